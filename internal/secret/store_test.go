package secret

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvVar(t *testing.T) {
	cases := map[string]string{
		"prod-db":   "PAGEDOC_SECRET_PROD_DB",
		"Mongo.Pwd": "PAGEDOC_SECRET_MONGO_PWD",
		"x1":        "PAGEDOC_SECRET_X1",
	}
	for key, want := range cases {
		if got := EnvVar(key); got != want {
			t.Errorf("EnvVar(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestEnvStore(t *testing.T) {
	t.Setenv(EnvVar("db"), "")
	s := Open(KindEnv)

	if err := s.Set("db", []byte("hunter2")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get("db")
	if err != nil || string(got) != "hunter2" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := s.Delete("db"); err != nil {
		t.Fatal(err)
	}
	if got, err := s.Get("db"); err != nil || got != nil {
		t.Fatalf("expected missing secret, got %q, %v", got, err)
	}
}

// fakeKeychain answers `security` invocations from a map.
type fakeKeychain struct {
	items map[string]string
	calls [][]string
}

func (f *fakeKeychain) run(args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	var account string
	for i := 1; i+1 < len(args); i++ {
		if args[i] == "-a" {
			account = args[i+1]
		}
	}
	switch args[0] {
	case "add-generic-password":
		for i := 1; i+1 < len(args); i++ {
			if args[i] == "-w" {
				f.items[account] = args[i+1]
			}
		}
		return nil, nil
	case "find-generic-password":
		v, ok := f.items[account]
		if !ok {
			return nil, errItemNotFound
		}
		return []byte(v + "\n"), nil
	case "delete-generic-password":
		if _, ok := f.items[account]; !ok {
			return nil, errItemNotFound
		}
		delete(f.items, account)
		return nil, nil
	}
	return nil, errors.New("unexpected command " + args[0])
}

func TestKeychainStore(t *testing.T) {
	fake := &fakeKeychain{items: map[string]string{}}
	k := &KeychainStore{service: keychainService, security: fake.run}

	if got, err := k.Get("db"); err != nil || got != nil {
		t.Fatalf("expected missing secret, got %q, %v", got, err)
	}
	if err := k.Set("db", []byte("hunter2")); err != nil {
		t.Fatal(err)
	}
	got, err := k.Get("db")
	if err != nil || string(got) != "hunter2" {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if err := k.Delete("db"); err != nil {
		t.Fatal(err)
	}
	if err := k.Delete("db"); err != nil {
		t.Fatalf("deleting a missing item should succeed, got %v", err)
	}

	want := []string{"add-generic-password", "-a", "db", "-s", "pagedoc", "-w", "hunter2", "-U"}
	if diff := cmp.Diff(want, fake.calls[1]); diff != "" {
		t.Errorf("set arguments (-want +got):\n%s", diff)
	}
}

func TestKeychainStore_ReportsFailures(t *testing.T) {
	k := &KeychainStore{service: keychainService, security: func(...string) ([]byte, error) {
		return nil, errors.New("user interaction is not allowed")
	}}
	if _, err := k.Get("db"); err == nil {
		t.Fatal("expected an error from Get")
	}
	if err := k.Delete("db"); err == nil {
		t.Fatal("expected an error from Delete")
	}
}
