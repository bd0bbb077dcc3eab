package profile

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/trezy/git-switch/internal/types"
)

// writeKeys is a ProvisionFunc that drops placeholder key files.
func writeKeys(dir string) error {
	if err := os.WriteFile(filepath.Join(dir, PrivateKeyFileName), []byte("private"), 0600); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, PublicKeyFileName), []byte("ssh-ed25519 AAAA test"), 0644)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), ".git-switch"))
	if err := s.Ensure(); err != nil {
		t.Fatalf("Ensure() failed: %v", err)
	}
	return s
}

func TestStore_List(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		s := NewStore(filepath.Join(t.TempDir(), "nope"))
		names, err := s.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(names) != 0 {
			t.Errorf("expected empty list, got %v", names)
		}
	})

	t.Run("sorted and skips sentinel and files", func(t *testing.T) {
		s := newTestStore(t)
		for _, name := range []string{"work", "acme", "personal"} {
			if err := s.Create(types.Profile{Name: name}, writeKeys); err != nil {
				t.Fatalf("Create(%s) failed: %v", name, err)
			}
		}
		if err := os.WriteFile(filepath.Join(s.Root(), CurrentFileName), []byte("work"), 0600); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(s.Root(), ".DS_Store"), nil, 0600); err != nil {
			t.Fatal(err)
		}

		names, err := s.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		want := []string{"acme", "personal", "work"}
		if !reflect.DeepEqual(names, want) {
			t.Errorf("List() = %v, want %v", names, want)
		}
	})
}

func TestStore_Create(t *testing.T) {
	t.Run("writes config and provisions", func(t *testing.T) {
		s := newTestStore(t)
		p := types.Profile{Name: "work", DisplayName: "Jane", Email: "a@b.com"}

		var provisioned string
		err := s.Create(p, func(dir string) error {
			provisioned = dir
			return writeKeys(dir)
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if provisioned != s.Dir("work") {
			t.Errorf("provision called with %q, want %q", provisioned, s.Dir("work"))
		}

		for _, f := range []string{ConfigFileName, PrivateKeyFileName, PublicKeyFileName} {
			if _, err := os.Stat(filepath.Join(s.Dir("work"), f)); err != nil {
				t.Errorf("expected %s to exist: %v", f, err)
			}
		}

		data, err := os.ReadFile(filepath.Join(s.Dir("work"), ConfigFileName))
		if err != nil {
			t.Fatal(err)
		}
		want := "{\n  \"name\": \"Jane\",\n  \"email\": \"a@b.com\"\n}"
		if string(data) != want {
			t.Errorf("config.json = %q, want %q", string(data), want)
		}
	})

	t.Run("create then list includes name", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Create(types.Profile{Name: "work"}, writeKeys); err != nil {
			t.Fatal(err)
		}
		names, _ := s.List()
		if !reflect.DeepEqual(names, []string{"work"}) {
			t.Errorf("List() = %v", names)
		}
		if !s.Exists("work") {
			t.Error("Exists(work) = false")
		}
	})

	t.Run("duplicate leaves first profile untouched", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Create(types.Profile{Name: "work", Email: "first@b.com"}, writeKeys); err != nil {
			t.Fatal(err)
		}
		before, _ := os.ReadFile(filepath.Join(s.Dir("work"), PrivateKeyFileName))

		provisionCalled := false
		err := s.Create(types.Profile{Name: "work", Email: "second@b.com"}, func(string) error {
			provisionCalled = true
			return nil
		})
		if !errors.Is(err, types.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
		if provisionCalled {
			t.Error("provision should not run for a duplicate")
		}

		p, err := s.Read("work")
		if err != nil {
			t.Fatal(err)
		}
		if p.Email != "first@b.com" {
			t.Errorf("first profile was modified: email %q", p.Email)
		}
		after, _ := os.ReadFile(filepath.Join(s.Dir("work"), PrivateKeyFileName))
		if string(before) != string(after) {
			t.Error("first profile's key was modified")
		}
	})

	t.Run("invalid names", func(t *testing.T) {
		s := newTestStore(t)
		for _, name := range []string{"", "current", "..", "a/b", "with space"} {
			err := s.Create(types.Profile{Name: name}, writeKeys)
			if !errors.Is(err, types.ErrInvalidName) {
				t.Errorf("Create(%q): expected ErrInvalidName, got %v", name, err)
			}
		}
	})

	t.Run("provision failure keeps directory", func(t *testing.T) {
		s := newTestStore(t)
		provErr := errors.New("keygen exploded")
		err := s.Create(types.Profile{Name: "work"}, func(string) error { return provErr })
		if !errors.Is(err, provErr) {
			t.Fatalf("expected provision error, got %v", err)
		}
		if !s.Exists("work") {
			t.Error("expected partially created profile to remain")
		}
	})

	t.Run("creates missing root", func(t *testing.T) {
		s := NewStore(filepath.Join(t.TempDir(), "deep", "root"))
		if err := s.Create(types.Profile{Name: "work"}, nil); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if !s.Exists("work") {
			t.Error("expected profile to exist")
		}
	})
}

func TestStore_Read(t *testing.T) {
	s := newTestStore(t)
	if err := s.Create(types.Profile{Name: "work", DisplayName: "Jane", Email: "a@b.com"}, writeKeys); err != nil {
		t.Fatal(err)
	}

	t.Run("success", func(t *testing.T) {
		p, err := s.Read("work")
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		want := &types.Profile{Name: "work", DisplayName: "Jane", Email: "a@b.com"}
		if !reflect.DeepEqual(p, want) {
			t.Errorf("Read() = %+v, want %+v", p, want)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.Read("missing")
		if !errors.Is(err, types.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("missing config.json", func(t *testing.T) {
		if err := os.Mkdir(s.Dir("bare"), 0700); err != nil {
			t.Fatal(err)
		}
		_, err := s.Read("bare")
		if !errors.Is(err, types.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("corrupt config", func(t *testing.T) {
		if err := os.Mkdir(s.Dir("broken"), 0700); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(s.Dir("broken"), ConfigFileName), []byte("{not json"), 0600); err != nil {
			t.Fatal(err)
		}
		_, err := s.Read("broken")
		if !errors.Is(err, types.ErrCorruptConfig) {
			t.Errorf("expected ErrCorruptConfig, got %v", err)
		}
	})
}

func TestStore_Delete(t *testing.T) {
	t.Run("create and delete are inverse", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Create(types.Profile{Name: "work"}, writeKeys); err != nil {
			t.Fatal(err)
		}
		if err := s.Create(types.Profile{Name: "home"}, writeKeys); err != nil {
			t.Fatal(err)
		}

		if err := s.Delete("work"); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}

		names, _ := s.List()
		if !reflect.DeepEqual(names, []string{"home"}) {
			t.Errorf("List() after delete = %v", names)
		}
		if _, err := os.Stat(s.Dir("work")); !os.IsNotExist(err) {
			t.Errorf("expected profile directory to be gone, stat err = %v", err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		s := newTestStore(t)
		if err := s.Delete("missing"); !errors.Is(err, types.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("does not touch tracker", func(t *testing.T) {
		s := newTestStore(t)
		tr := NewTracker(s.Root())
		if err := s.Create(types.Profile{Name: "work"}, writeKeys); err != nil {
			t.Fatal(err)
		}
		if err := tr.Set("work"); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete("work"); err != nil {
			t.Fatal(err)
		}

		got, err := NewTracker(s.Root()).Get()
		if err != nil {
			t.Fatal(err)
		}
		if got != "work" {
			t.Errorf("expected stale tracker value 'work', got %q", got)
		}
	})
}

func TestStore_LegacyNameReachable(t *testing.T) {
	s := newTestStore(t)

	// Older versions accepted any name at the prompt.
	dir := filepath.Join(s.Root(), "my work")
	if err := os.Mkdir(dir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(`{"name":"Jane","email":"jane@work.example"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := writeKeys(dir); err != nil {
		t.Fatal(err)
	}

	names, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if !reflect.DeepEqual(names, []string{"my work"}) {
		t.Fatalf("List() = %v", names)
	}

	for _, name := range names {
		if !s.Exists(name) {
			t.Errorf("Exists(%q) = false for a listed profile", name)
		}
	}

	p, err := s.Read("my work")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if p.Email != "jane@work.example" {
		t.Errorf("Email = %q", p.Email)
	}

	if err := s.Create(types.Profile{Name: "other work"}, writeKeys); !errors.Is(err, types.ErrInvalidName) {
		t.Errorf("Create with a space: expected ErrInvalidName, got %v", err)
	}

	if err := s.Delete("my work"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("profile directory still present: %v", err)
	}
}

func TestStore_RejectsPathNames(t *testing.T) {
	s := newTestStore(t)
	if err := s.Create(types.Profile{Name: "work"}, writeKeys); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"..", ".", "current", "work/..", "../.git-switch"} {
		if s.Exists(name) {
			t.Errorf("Exists(%q) = true", name)
		}
		if _, err := s.Read(name); !errors.Is(err, types.ErrNotFound) {
			t.Errorf("Read(%q): expected ErrNotFound, got %v", name, err)
		}
		if err := s.Delete(name); !errors.Is(err, types.ErrNotFound) {
			t.Errorf("Delete(%q): expected ErrNotFound, got %v", name, err)
		}
	}
	if !s.Exists("work") {
		t.Error("work profile was removed")
	}
}
