package bridge

import (
	"testing"

	"crb/internal/engine/enginetest"
	"crb/internal/errors"
)

func TestFileSet(t *testing.T) {
	cb := enginetest.NewFakeCodebase("alpha", "/p/a")
	cb.AddDocument("/p/a/src/A.java", "class A {}")
	cb.AddDocument("/p/a/src/util/B.java", "class B {}")
	cb.AddDocument("/p/a/gen/C.java", "class C {}")

	t.Run("whole codebase", func(t *testing.T) {
		files, err := fileSet(cb, "")
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"/p/a/gen/C.java", "/p/a/src/A.java", "/p/a/src/util/B.java"}
		if len(files) != len(want) {
			t.Fatalf("files = %v", files)
		}
		for i := range want {
			if files[i] != want[i] {
				t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
			}
		}
	})

	t.Run("single file", func(t *testing.T) {
		files, err := fileSet(cb, "/p/a/src/A.java")
		if err != nil {
			t.Fatal(err)
		}
		if len(files) != 1 || files[0] != "/p/a/src/A.java" {
			t.Errorf("files = %v", files)
		}
	})

	t.Run("directory", func(t *testing.T) {
		files, err := fileSet(cb, "/p/a/src")
		if err != nil {
			t.Fatal(err)
		}
		if len(files) != 2 {
			t.Fatalf("files = %v", files)
		}
		if files[0] != "/p/a/src/A.java" || files[1] != "/p/a/src/util/B.java" {
			t.Errorf("files = %v, want sorted src files", files)
		}
	})

	t.Run("trailing slash", func(t *testing.T) {
		files, err := fileSet(cb, "/p/a/gen/")
		if err != nil {
			t.Fatal(err)
		}
		if len(files) != 1 || files[0] != "/p/a/gen/C.java" {
			t.Errorf("files = %v", files)
		}
	})

	t.Run("no match", func(t *testing.T) {
		_, err := fileSet(cb, "/p/a/docs")
		if errors.CodeOf(err) != errors.FileNotInProject {
			t.Errorf("CodeOf() = %v, want FileNotInProject", errors.CodeOf(err))
		}
	})

	t.Run("backslashes normalized", func(t *testing.T) {
		files, err := fileSet(cb, `\p\a\src\A.java`)
		if err != nil {
			t.Fatal(err)
		}
		if len(files) != 1 || files[0] != "/p/a/src/A.java" {
			t.Errorf("files = %v", files)
		}
	})
}
