package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTableName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"rides.csv", "rides"},
		{"yellow_tripdata.2021.csv", "yellow_tripdata.2021"},
		{"rides", "rides"},
		{".env", ".env"},
		{"sub/dir/rides.csv", "rides"},
		{"trailing.", "trailing"},
	}
	for _, tc := range cases {
		if got := TableName(tc.in); got != tc.want {
			t.Errorf("TableName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestList_RegularFilesOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.2021.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n1\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	got, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := []Entry{
		{Name: "a.csv", Path: filepath.Join(dir, "a.csv"), Table: "a"},
		{Name: "b.2021.csv", Path: filepath.Join(dir, "b.2021.csv"), Table: "b.2021"},
	}
	if len(got) != len(want) {
		t.Fatalf("List = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestList_SortedByName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"zones.csv", "b.csv", "a_trips.csv", "Zeta.csv"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x\n1\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	got, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var names []string
	for _, e := range got {
		names = append(names, e.Name)
	}
	want := []string{"Zeta.csv", "a_trips.csv", "b.csv", "zones.csv"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("names = %v, want %v", names, want)
		}
	}
}

func TestList_EmptyDir(t *testing.T) {
	t.Parallel()

	got, err := List(t.TempDir())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("List = %+v, want empty", got)
	}
}

func TestList_MissingDir(t *testing.T) {
	t.Parallel()

	_, err := List(filepath.Join(t.TempDir(), "ingestion_files"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist in chain, got %v", err)
	}
}
