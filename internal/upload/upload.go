// Package upload pushes generated HTML reports to a web host over SFTP.
package upload

import (
	"fmt"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Target is a parsed SFTP destination.
type Target struct {
	User string
	Host string
	Port int
	Path string
}

// Addr returns host:port for dialing.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// ParseTarget accepts user@host, user@host:port, and ssh:// prefixed
// forms. The port defaults to 22 and the user to sshuser.
func ParseTarget(value, remotePath string) (Target, error) {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "ssh://")
	if value == "" {
		return Target{}, fmt.Errorf("upload target is empty")
	}

	t := Target{User: "sshuser", Port: 22}
	hostPort := value
	if at := strings.Index(value, "@"); at >= 0 {
		if user := strings.TrimSpace(value[:at]); user != "" {
			t.User = user
		}
		hostPort = value[at+1:]
	}

	if host, port, err := net.SplitHostPort(hostPort); err == nil {
		p, err := strconv.Atoi(port)
		if err != nil {
			return Target{}, fmt.Errorf("upload target port %q is not a number", port)
		}
		t.Host = host
		t.Port = p
	} else {
		// No port given; unwrap a bracketed IPv6 literal. A bare IPv6
		// host keeps all its colons.
		t.Host = strings.TrimSuffix(strings.TrimPrefix(hostPort, "["), "]")
	}
	t.Host = strings.TrimSpace(t.Host)
	if t.Host == "" {
		return Target{}, fmt.Errorf("upload target has no host")
	}

	t.Path = strings.TrimSpace(remotePath)
	if t.Path == "" {
		return Target{}, fmt.Errorf("upload remote path is empty")
	}
	if !strings.HasPrefix(t.Path, "/") {
		t.Path = "/" + t.Path
	}
	return t, nil
}

// TargetFromEnv reads UPLOAD_SSH, UPLOAD_SSH_PW, and UPLOAD_PATH.
func TargetFromEnv() (Target, string, error) {
	target := os.Getenv("UPLOAD_SSH")
	password := strings.TrimSpace(os.Getenv("UPLOAD_SSH_PW"))
	remotePath := os.Getenv("UPLOAD_PATH")
	if strings.TrimSpace(target) == "" || password == "" || strings.TrimSpace(remotePath) == "" {
		return Target{}, "", fmt.Errorf("missing UPLOAD_SSH / UPLOAD_SSH_PW / UPLOAD_PATH")
	}
	t, err := ParseTarget(target, remotePath)
	return t, password, err
}

// Uploader copies report files to the remote host.
type Uploader struct {
	Target   Target
	Password string
	Log      *log.Logger
}

// Upload connects once and pushes every named file from localDir into
// the target path, creating remote directories as needed.
func (u *Uploader) Upload(localDir string, names []string) error {
	for _, name := range names {
		local := filepath.Join(localDir, name)
		if _, err := os.Stat(local); err != nil {
			return fmt.Errorf("missing local report %s: %w", local, err)
		}
	}

	conn, err := ssh.Dial("tcp", u.Target.Addr(), &ssh.ClientConfig{
		User:            u.Target.User,
		Auth:            []ssh.AuthMethod{ssh.Password(u.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	})
	if err != nil {
		return fmt.Errorf("ssh dial %s: %w", u.Target.Addr(), err)
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return fmt.Errorf("sftp session: %w", err)
	}
	defer client.Close()

	if err := ensureRemoteDir(client, u.Target.Path); err != nil {
		return err
	}

	for _, name := range names {
		local := filepath.Join(localDir, name)
		remote := path.Join(u.Target.Path, name)
		if err := putFile(client, local, remote); err != nil {
			return fmt.Errorf("upload %s: %w", name, err)
		}
		if u.Log != nil {
			u.Log.Info("uploaded", "file", name, "remote", u.Target.Host+":"+remote)
		}
	}
	return nil
}

func putFile(client *sftp.Client, local, remote string) error {
	src, err := os.Open(local)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := client.Create(remote)
	if err != nil {
		return err
	}
	if _, err := dst.ReadFrom(src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// ensureRemoteDir creates each path segment that does not exist yet.
func ensureRemoteDir(client *sftp.Client, dir string) error {
	dir = strings.TrimRight(dir, "/")
	if dir == "" {
		return nil
	}
	var prefix string
	for _, part := range strings.Split(dir, "/") {
		if part == "" {
			continue
		}
		prefix = prefix + "/" + part
		if _, err := client.Stat(prefix); err == nil {
			continue
		}
		if err := client.Mkdir(prefix); err != nil {
			return fmt.Errorf("create remote dir %s: %w", prefix, err)
		}
	}
	return nil
}
