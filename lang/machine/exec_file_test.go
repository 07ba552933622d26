package machine_test

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ipp23/interp/internal/filetest"
	"github.com/ipp23/interp/lang/machine"
	"github.com/ipp23/interp/lang/program"
)

var testUpdateExecTests = flag.Bool("test.update-exec-tests", false, "If set, replace expected execution results with actual results.")

// TestExecFiles loads the programs in testdata/in/*.xml and runs each to
// completion, comparing the produced stdout and stderr against the golden
// files in testdata/out. A program's input, if any, is the sibling .input
// file.
func TestExecFiles(t *testing.T) {
	srcDir, resultDir := filepath.Join("testdata", "in"), filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, srcDir, ".xml") {
		t.Run(fi.Name(), func(t *testing.T) {
			f, err := os.Open(filepath.Join(srcDir, fi.Name()))
			require.NoError(t, err)
			defer f.Close()

			p, err := program.Load(f)
			require.NoError(t, err)

			base := strings.TrimSuffix(fi.Name(), ".xml")
			input, err := os.ReadFile(filepath.Join(srcDir, base+".input"))
			if err != nil && !os.IsNotExist(err) {
				t.Fatal(err)
			}

			var out, ebuf bytes.Buffer
			m := &machine.Machine{
				Stdout: &out,
				Stderr: &ebuf,
				Stdin:  bytes.NewReader(input),
			}
			require.NoError(t, m.Run(context.Background(), p))

			filetest.DiffOutput(t, fi, out.String(), resultDir, testUpdateExecTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateExecTests)
		})
	}
}
