package notify

// mockBackend records notifications instead of showing them.
type mockBackend struct {
	err         error
	notifyCalls []notifyCall
	alertCalls  []notifyCall
}

type notifyCall struct {
	title   string
	message string
}

func (m *mockBackend) Notify(title, message, _ string) error {
	m.notifyCalls = append(m.notifyCalls, notifyCall{title: title, message: message})
	return m.err
}

func (m *mockBackend) Alert(title, message, _ string) error {
	m.alertCalls = append(m.alertCalls, notifyCall{title: title, message: message})
	return m.err
}
