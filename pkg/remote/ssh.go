package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

const defaultSSHPort = 22

type SSHClientConfig struct {
	Host    string `validate:"required"`
	Port    int
	User    string `validate:"required"`
	KeyFile string `validate:"required"`

	// DialTimeout bounds the TCP connect, defaults to 15s.
	DialTimeout time.Duration
}

// SSHClient runs commands and copies files over one SSH connection. Sessions
// are opened per command; the underlying connection is reused.
type SSHClient struct {
	conn *ssh.Client
}

var _ Channel = (*SSHClient)(nil)

func ConnectSSH(ctx context.Context, conf SSHClientConfig) (*SSHClient, error) {
	err := validator.New().Struct(conf)
	if err != nil {
		return nil, fmt.Errorf("ssh client config invalid: %w", err)
	}

	keyBytes, err := os.ReadFile(conf.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("read ssh key %s: %w", conf.KeyFile, err)
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key %s: %w", conf.KeyFile, err)
	}

	port := conf.Port
	if port <= 0 {
		port = defaultSSHPort
	}

	dialTimeout := conf.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 15 * time.Second
	}

	sshConf := &ssh.ClientConfig{
		User:            conf.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         dialTimeout,
	}

	addr := net.JoinHostPort(conf.Host, strconv.Itoa(port))

	dialer := net.Dialer{Timeout: dialTimeout}
	tcpConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(tcpConn, addr, sshConf)
	if err != nil {
		_ = tcpConn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}

	return &SSHClient{conn: ssh.NewClient(sshConn, chans, reqs)}, nil
}

func (c *SSHClient) Run(ctx context.Context, command string) (Result, error) {
	session, err := c.conn.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("open ssh session: %w", err)
	}
	defer func() {
		_ = session.Close()
	}()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(command)
	}()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return Result{}, ctx.Err()
	case err = <-done:
	}

	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitStatus()
		return result, nil
	}

	return result, fmt.Errorf("run remote command: %w", err)
}

func (c *SSHClient) Copy(ctx context.Context, localPath, remotePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sftpClient, err := sftp.NewClient(c.conn)
	if err != nil {
		return fmt.Errorf("open sftp session: %w", err)
	}
	defer func() {
		_ = sftpClient.Close()
	}()

	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open local file %s: %w", localPath, err)
	}
	defer func() {
		_ = src.Close()
	}()

	if err := sftpClient.MkdirAll(path.Dir(remotePath)); err != nil {
		return fmt.Errorf("create remote dir %s: %w", path.Dir(remotePath), err)
	}

	dst, err := sftpClient.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}

	_, err = io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("copy to %s: %w", remotePath, err)
	}

	return nil
}

func (c *SSHClient) Close() error {
	return c.conn.Close()
}
