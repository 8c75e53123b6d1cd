//go:build integration

package tex2png

// Notes:
// - Integration tests run the real latex and dvipng. TestMain skips the whole
//   package when either is missing, so `go test -tags integration` stays green
//   on machines without TeX.
// - First runs may generate fonts; testTimeout leaves room for that.

import (
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"
)

// testTimeout bounds a single real conversion.
const testTimeout = 2 * time.Minute

func TestMain(m *testing.M) {
	for _, tool := range []string{"latex", "dvipng"} {
		if _, err := exec.LookPath(tool); err != nil {
			fmt.Fprintf(os.Stderr, "skipping integration tests: %s not found\n", tool)
			os.Exit(0)
		}
	}
	os.Exit(m.Run())
}
