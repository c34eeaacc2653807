// Package admin implements operator commands that run against the service
// layer directly, without going through the HTTP API.
package admin

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/term"

	"github.com/Batajoo/youtube-backend-clone/internal/flagx"
	"github.com/Batajoo/youtube-backend-clone/internal/server/models"
	"github.com/Batajoo/youtube-backend-clone/internal/server/services"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// Registrar creates identities.
type Registrar interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.Identity, error)
}

// CreateUserOptions are the create-user command-line arguments.
type CreateUserOptions struct {
	Username   string
	Email      string
	FullName   string
	AvatarPath string
	CoverPath  string
}

var createUserFlags = []string{
	"-username", "--username",
	"-email", "--email",
	"-fullname", "--fullname",
	"-avatar", "--avatar",
	"-cover", "--cover",
}

// ParseCreateUserArgs reads the create-user flags from args, ignoring any
// server configuration flags mixed in.
func ParseCreateUserArgs(args []string) (CreateUserOptions, error) {
	var o CreateUserOptions

	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.Username, "username", "", "username")
	fs.StringVar(&o.Email, "email", "", "email address")
	fs.StringVar(&o.FullName, "fullname", "", "full name")
	fs.StringVar(&o.AvatarPath, "avatar", "", "path to the avatar image")
	fs.StringVar(&o.CoverPath, "cover", "", "path to the cover image (optional)")

	if err := fs.Parse(flagx.FilterArgs(args, createUserFlags)); err != nil {
		return o, err
	}

	var missing []string
	for name, v := range map[string]string{"-username": o.Username, "-email": o.Email, "-fullname": o.FullName, "-avatar": o.AvatarPath} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return o, fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}
	return o, nil
}

// GetPassword prompts on w and reads a password from the terminal without
// echo. The caller should wipe the returned slice.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, errors.New("password is empty")
	}
	return pw, nil
}

// CreateUser registers one identity with the images read from disk.
func CreateUser(ctx context.Context, users Registrar, o CreateUserOptions, password []byte) (*models.Identity, error) {
	avatar, closeAvatar, err := openUpload(o.AvatarPath)
	if err != nil {
		return nil, err
	}
	defer closeAvatar()

	var cover *services.FileUpload
	if o.CoverPath != "" {
		var closeCover func()
		cover, closeCover, err = openUpload(o.CoverPath)
		if err != nil {
			return nil, err
		}
		defer closeCover()
	}

	return users.Register(ctx, services.RegisterInput{
		Username:   o.Username,
		Email:      o.Email,
		FullName:   o.FullName,
		Password:   string(password),
		Avatar:     avatar,
		CoverImage: cover,
	})
}

func openUpload(path string) (*services.FileUpload, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}

	name := filepath.Base(path)
	return &services.FileUpload{
		Name:        name,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		Size:        info.Size(),
		Body:        f,
	}, func() { _ = f.Close() }, nil
}
