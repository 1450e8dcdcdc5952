package dotenv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	return path
}

func openEnv(t *testing.T, content string) (*Store, string) {
	t.Helper()
	path := writeEnv(t, content)
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

// assertFile checks both the buffer and the file on disk
func assertFile(t *testing.T, s *Store, path, want string) {
	t.Helper()
	if got := string(s.Bytes()); got != want {
		t.Errorf("buffer = %q; want %q", got, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read back %s: %v", path, err)
	}
	if string(data) != want {
		t.Errorf("file = %q; want %q", data, want)
	}
}

// assertIndexFresh compares the maintained index with a full re-parse
func assertIndexFresh(t *testing.T, s *Store) {
	t.Helper()
	fresh := Load(s.Bytes()).Entries()
	if got := s.Entries(); !reflect.DeepEqual(got, fresh) {
		t.Errorf("index drifted:\n got  %+v\n want %+v", got, fresh)
	}
}

func mustGet(t *testing.T, s *Store, key string) string {
	t.Helper()
	v, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v", key, err)
	}
	return v
}

func TestRoundTrip(t *testing.T) {
	content := "# app settings\r\nFOO=1\n\n  BAR = two \n#BAZ=3\nno equals here\nQUX=\xff\nLAST=x"
	s, path := openEnv(t, content)

	if err := s.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	assertFile(t, s, path, content)
}

func TestSetUpdateScenario(t *testing.T) {
	s, path := openEnv(t, "FOO=1\nBAR=2\n")

	if err := s.Set("FOO", []byte("99")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	assertFile(t, s, path, "FOO=99\nBAR=2\n")
	if v := mustGet(t, s, "FOO"); v != "99" {
		t.Errorf("Get(FOO) = %q; want 99", v)
	}
	if v := mustGet(t, s, "BAR"); v != "2" {
		t.Errorf("Get(BAR) = %q; want 2", v)
	}
	assertIndexFresh(t, s)
}

func TestSetCreateScenario(t *testing.T) {
	s, path := openEnv(t, "FOO=1\n")

	if err := s.Set("BAR", []byte("2")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	assertFile(t, s, path, "FOO=1\n\nBAR=2")
	if v := mustGet(t, s, "BAR"); v != "2" {
		t.Errorf("Get(BAR) = %q; want 2", v)
	}
	assertIndexFresh(t, s)
}

func TestSetCreateThenGet(t *testing.T) {
	values := []string{"", "x", "with spaces", "a=b=c", "#notacomment", "ünïcödé"}
	for _, v := range values {
		s := Load([]byte("EXISTING=1\n"))
		if err := s.Set("NEW", []byte(v)); err != nil {
			t.Fatalf("Set(%q) failed: %v", v, err)
		}
		if got := mustGet(t, s, "NEW"); got != v {
			t.Errorf("Get after Set(%q) = %q", v, got)
		}
		assertIndexFresh(t, s)
	}
}

func TestSetCreateInEmptyBuffer(t *testing.T) {
	s := Load(nil)
	if err := s.Set("A", []byte("1"), "first", "second"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := string(s.Bytes()); got != "# first\n# second\nA=1" {
		t.Errorf("buffer = %q", got)
	}
}

func TestSetUpdateIdempotent(t *testing.T) {
	s := Load([]byte("A=1\nB=2\n"))
	if err := s.Set("B", []byte("long value"), "about B"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	once := s.Bytes()

	if err := s.Set("B", []byte("long value"), "about B"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !bytes.Equal(once, s.Bytes()) {
		t.Errorf("second Set changed buffer: %q -> %q", once, s.Bytes())
	}

	if err := s.Set("A", []byte("9")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	twice := s.Bytes()
	if err := s.Set("A", []byte("9")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !bytes.Equal(twice, s.Bytes()) {
		t.Errorf("second Set changed buffer: %q -> %q", twice, s.Bytes())
	}
}

func TestSetEmptyValueUpdatesInPlace(t *testing.T) {
	s := Load([]byte("FOO=\nBAR=2\n"))
	if err := s.Set("FOO", []byte("x")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := string(s.Bytes()); got != "FOO=x\nBAR=2\n" {
		t.Errorf("buffer = %q", got)
	}
	assertIndexFresh(t, s)
}

func TestSetKeepsCRLF(t *testing.T) {
	s := Load([]byte("A=1\r\nB=2\r\n"))
	if err := s.Set("A", []byte("42")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := string(s.Bytes()); got != "A=42\r\nB=2\r\n" {
		t.Errorf("buffer = %q", got)
	}
	assertIndexFresh(t, s)
}

func TestDescriptionReplace(t *testing.T) {
	s, path := openEnv(t, "FOO=1\nBAR=2\n")

	if err := s.Set("BAR", []byte("v1"), "a"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	assertFile(t, s, path, "FOO=1\n# a\nBAR=v1\n")

	if err := s.Set("BAR", []byte("v2"), "b"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	assertFile(t, s, path, "FOO=1\n# b\nBAR=v2\n")

	if n := strings.Count(string(s.Bytes()), "# "); n != 1 {
		t.Errorf("expected exactly one comment line, found %d", n)
	}
	if v := mustGet(t, s, "BAR"); v != "v2" {
		t.Errorf("Get(BAR) = %q; want v2", v)
	}
	assertIndexFresh(t, s)
}

func TestDescriptionBlockBoundaries(t *testing.T) {
	s := Load([]byte("A=1\n\n# section header\n\n# old one\n# old two\nB=2\nC=3\n"))

	if err := s.Set("B", []byte("3"), "new"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	want := "A=1\n\n# section header\n\n# new\nB=3\nC=3\n"
	if got := string(s.Bytes()); got != want {
		t.Errorf("buffer = %q; want %q", got, want)
	}

	// The declaration directly above bounds the block
	if err := s.Set("C", []byte("4"), "about C"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	want = "A=1\n\n# section header\n\n# new\nB=3\n# about C\nC=4\n"
	if got := string(s.Bytes()); got != want {
		t.Errorf("buffer = %q; want %q", got, want)
	}
	assertIndexFresh(t, s)
}

func TestDescriptionOnFirstLine(t *testing.T) {
	s := Load([]byte("# stale\nA=1\nB=2\n"))
	if err := s.Set("A", []byte("1"), "fresh", ""); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := string(s.Bytes()); got != "# fresh\n#\nA=1\nB=2\n" {
		t.Errorf("buffer = %q", got)
	}
	assertIndexFresh(t, s)
}

func TestDisableScenario(t *testing.T) {
	s, path := openEnv(t, "FOO=1\n")

	if err := s.Toggle("FOO", Disable); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}
	assertFile(t, s, path, "#FOO=1\n")
	if v := mustGet(t, s, "FOO"); v != "1" {
		t.Errorf("Get(FOO) = %q; want 1", v)
	}
	disabled, err := s.Disabled("FOO")
	if err != nil || !disabled {
		t.Errorf("Disabled(FOO) = %v, %v; want true", disabled, err)
	}
}

func TestToggleRoundTrip(t *testing.T) {
	original := "A=1\n  B= spaced\nC=3"
	s := Load([]byte(original))

	for _, key := range []string{"A", "B", "C"} {
		if err := s.Toggle(key, Disable); err != nil {
			t.Fatalf("Disable(%s) failed: %v", key, err)
		}
		if err := s.Toggle(key, Enable); err != nil {
			t.Fatalf("Enable(%s) failed: %v", key, err)
		}
		if got := string(s.Bytes()); got != original {
			t.Errorf("after toggling %s buffer = %q; want %q", key, got, original)
		}
	}
	assertIndexFresh(t, s)
}

func TestDisableIsAdditive(t *testing.T) {
	s := Load([]byte("FOO=1\n"))

	for i := 0; i < 2; i++ {
		if err := s.Toggle("FOO", Disable); err != nil {
			t.Fatalf("Disable failed: %v", err)
		}
	}
	if got := string(s.Bytes()); got != "##FOO=1\n" {
		t.Fatalf("buffer = %q; want ##FOO=1", got)
	}

	for _, want := range []string{"#FOO=1\n", "FOO=1\n"} {
		if err := s.Toggle("FOO", Enable); err != nil {
			t.Fatalf("Enable failed: %v", err)
		}
		if got := string(s.Bytes()); got != want {
			t.Errorf("buffer = %q; want %q", got, want)
		}
	}

	if err := s.Toggle("FOO", Enable); !errors.Is(err, ErrAlreadyEnabled) {
		t.Errorf("expected ErrAlreadyEnabled, got %v", err)
	}
	if got := string(s.Bytes()); got != "FOO=1\n" {
		t.Errorf("failed Enable changed buffer: %q", got)
	}
}

func TestEnableIndentedComment(t *testing.T) {
	s := Load([]byte("  #FOO=1\n"))
	if err := s.Toggle("FOO", Enable); !errors.Is(err, ErrAlreadyEnabled) {
		t.Errorf("expected ErrAlreadyEnabled for indented comment, got %v", err)
	}
}

func TestToggleNotFound(t *testing.T) {
	s := Load([]byte("FOO=1\n"))
	for _, st := range []State{Disable, Enable} {
		if err := s.Toggle("MISSING", st); !errors.Is(err, ErrNotFound) {
			t.Errorf("%s: expected ErrNotFound, got %v", st, err)
		}
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		input string
		key   string
		want  string
	}{
		{"A=1\nB=2\nC=3\n", "B", "A=1\nC=3\n"},
		{"A=1\nB=2\n", "A", "B=2\n"},
		{"A=1\nB=2", "B", "A=1"},
		{"A=1\r\nB=2", "B", "A=1"},
		{"A=1\r\nB=2\r\n", "A", "B=2\r\n"},
		{"A=1", "A", ""},
		{"# keep me\n#A=1\nB=2\n", "A", "# keep me\nB=2\n"},
	}

	for _, test := range tests {
		s := Load([]byte(test.input))
		if err := s.Delete(test.key); err != nil {
			t.Errorf("Delete(%q) on %q failed: %v", test.key, test.input, err)
			continue
		}
		if got := string(s.Bytes()); got != test.want {
			t.Errorf("Delete(%q) on %q = %q; want %q", test.key, test.input, got, test.want)
		}
		if _, ok := s.Lookup(test.key); ok {
			t.Errorf("Delete(%q) left key indexed", test.key)
		}
		assertIndexFresh(t, s)
	}
}

func TestCreateThenDeleteRestoresFile(t *testing.T) {
	s, path := openEnv(t, "FOO=1\n")

	if err := s.Set("BAR", []byte("2")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Delete("BAR"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	assertFile(t, s, path, "FOO=1\n")

	if err := s.Delete("BAR"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOffsetsSurviveManyEdits(t *testing.T) {
	s, path := openEnv(t, "A=1\nB=2\nC=3\n")

	steps := []func() error{
		func() error { return s.Set("A", []byte("100")) },
		func() error { return s.Toggle("B", Disable) },
		func() error { return s.Set("C", []byte("4"), "c") },
		func() error { return s.Delete("A") },
		func() error { return s.Toggle("B", Enable) },
		func() error { return s.Set("D", []byte("5")) },
		func() error { return s.Set("B", []byte(""), "bee") },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		assertIndexFresh(t, s)
	}

	assertFile(t, s, path, "# bee\nB=\n# c\nC=4\n\nD=5")
	for key, want := range map[string]string{"B": "", "C": "4", "D": "5"} {
		if v := mustGet(t, s, key); v != want {
			t.Errorf("Get(%s) = %q; want %q", key, v, want)
		}
	}
}

func TestGetErrors(t *testing.T) {
	s := Load([]byte("BAD=\xff\xfe\nGOOD=ok\n"))

	if _, err := s.Get("MISSING"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get("BAD"); !errors.Is(err, ErrInvalidEncoding) {
		t.Errorf("expected ErrInvalidEncoding, got %v", err)
	}
	if v := mustGet(t, s, "GOOD"); v != "ok" {
		t.Errorf("Get(GOOD) = %q", v)
	}
}

func TestDuplicateKeysLaterWins(t *testing.T) {
	s := Load([]byte("FOO=first\nFOO=second\n"))
	if v := mustGet(t, s, "FOO"); v != "second" {
		t.Errorf("Get(FOO) = %q; want second", v)
	}

	if err := s.Set("FOO", []byte("third")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := string(s.Bytes()); got != "FOO=first\nFOO=third\n" {
		t.Errorf("buffer = %q", got)
	}
}

func TestCommentedAndActiveIndexToSameKey(t *testing.T) {
	s := Load([]byte("# FOO=1\n"))
	e, ok := s.Lookup("FOO")
	if !ok {
		t.Fatal("FOO not indexed")
	}
	if e.LineStart != 0 || e.ValueStart != 6 || e.ValueEnd != 7 {
		t.Errorf("entry = %+v", e)
	}
}

func TestSaveTruncates(t *testing.T) {
	s, path := openEnv(t, "LONG=aaaaaaaaaaaaaaaaaaaaaaaa\nNEXT=1\n")
	if err := s.Set("LONG", []byte("a")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	assertFile(t, s, path, "LONG=a\nNEXT=1\n")
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.env")

	_, err := Open(path)
	if !errors.Is(err, ErrIO) {
		t.Errorf("expected ErrIO, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}

	s, err := Create(path)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	defer s.Close()
	if err := s.Set("NEW", []byte("1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	assertFile(t, s, path, "NEW=1")
}

func TestSetRejectsBrokenInput(t *testing.T) {
	s := Load([]byte("A=1\n"))

	for _, key := range []string{"", "A=B", "#A", " A", "A\nB"} {
		if err := s.Set(key, []byte("1")); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Set(%q) expected ErrInvalidKey, got %v", key, err)
		}
	}
	if err := s.Set("A", []byte("1\n2")); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
	if err := s.Set("A", []byte("1"), "multi\nline"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
	if got := string(s.Bytes()); got != "A=1\n" {
		t.Errorf("rejected Set changed buffer: %q", got)
	}
}

func TestRestore(t *testing.T) {
	s, path := openEnv(t, "A=1\nB=2\n")
	before := s.Bytes()

	if err := s.Set("A", []byte("changed"), "note"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Restore(before); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	assertFile(t, s, path, "A=1\nB=2\n")
	if v := mustGet(t, s, "A"); v != "1" {
		t.Errorf("Get(A) = %q; want 1", v)
	}
}

func TestEntriesFileOrder(t *testing.T) {
	s := Load([]byte("Z=1\nA=2\n#M=3\n"))
	var keys []string
	for _, e := range s.Entries() {
		keys = append(keys, e.Key)
	}
	if want := []string{"Z", "A", "M"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("keys = %v; want %v", keys, want)
	}
}
