package admin

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/userservice/internal/flagx"
)

var superuserFlags = []string{"-email", "-username", "-gender", "-noinput"}

// ParseSuperuserFlags reads the createsuperuser options from args. Flags
// of the server configuration (-d, -s, ...) may be mixed in and are skipped.
func ParseSuperuserFlags(args []string) (SuperuserOptions, error) {
	var opts SuperuserOptions

	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.Email, "email", "", "email address of the superuser")
	fs.StringVar(&opts.Username, "username", "", "optional username")
	fs.StringVar(&opts.Gender, "gender", "divers", "profile gender")
	fs.BoolVar(&opts.NoInput, "noinput", false, "do not prompt; password is taken from USERSCTL_PASSWORD")

	if err := fs.Parse(flagx.FilterArgs(args, superuserFlags)); err != nil {
		return SuperuserOptions{}, err
	}
	return opts, nil
}
