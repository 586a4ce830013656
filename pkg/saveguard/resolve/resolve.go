// Package resolve expands manifest path templates into concrete glob
// patterns. Templates contain bracketed placeholder tokens for platform-
// and user-specific directories, e.g. "<documents>/My Game/saves".
//
// Resolution never fails: a placeholder whose directory cannot be
// determined expands to the empty string, producing a pattern that simply
// matches nothing on disk.
package resolve

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// Placeholder tokens recognized in templates.
const (
	TokenHome         = "<home>"
	TokenDocuments    = "<documents>"
	TokenAppData      = "<appData>"
	TokenLocalAppData = "<localAppData>"
	TokenStoreUserID  = "<storeUserId>"
	TokenOSUserName   = "<osUserName>"
)

// fallbackUsername is substituted for <osUserName> when the current user
// cannot be determined from any identity source.
const fallbackUsername = "user"

// Dirs holds the well-known directories used for placeholder expansion.
// Empty fields are legal and expand to the empty string.
type Dirs struct {
	Home         string
	Documents    string
	AppData      string
	LocalAppData string
}

// Resolver substitutes placeholder tokens in path templates.
// It is pure and deterministic for a fixed Dirs/Username pair, which
// makes it trivial to exercise in tests.
type Resolver struct {
	Dirs     Dirs
	Username string
}

// NewOSResolver builds a Resolver from the host environment: XDG
// well-known directories and the current OS user name.
func NewOSResolver() *Resolver {
	return &Resolver{
		Dirs: Dirs{
			Home:         xdg.Home,
			Documents:    xdg.UserDirs.Documents,
			AppData:      xdg.DataHome,
			LocalAppData: xdg.StateHome,
		},
		Username: currentUsername(),
	}
}

// Expand substitutes every occurrence of each recognized placeholder and
// normalizes path separators to the host platform. Unrecognized or
// malformed placeholder syntax is left untouched. Expand never fails;
// an unresolvable placeholder yields a pattern that matches nothing,
// which downstream detection reports as "does not exist".
func (r *Resolver) Expand(template string) string {
	expanded := strings.NewReplacer(
		TokenHome, r.Dirs.Home,
		TokenDocuments, r.Dirs.Documents,
		TokenAppData, r.Dirs.AppData,
		TokenLocalAppData, r.Dirs.LocalAppData,
		TokenStoreUserID, "*",
		TokenOSUserName, r.Username,
	).Replace(template)

	return strings.ReplaceAll(expanded, "/", string(filepath.Separator))
}

// currentUsername resolves the OS user name, falling back to the USER and
// USERNAME environment variables and finally a literal default.
func currentUsername() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		// user.Current on Windows returns DOMAIN\name; keep the name only.
		if i := strings.LastIndexByte(u.Username, '\\'); i >= 0 {
			return u.Username[i+1:]
		}
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	if name := os.Getenv("USERNAME"); name != "" {
		return name
	}
	return fallbackUsername
}
