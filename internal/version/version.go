package version

import "fmt"

// Заполняется при сборке через -ldflags "-X .../internal/version.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Version возвращает версию сборки.
func Version() string { return version }

func String() string {
	return fmt.Sprintf("version=%s commit=%s built=%s", version, commit, date)
}
