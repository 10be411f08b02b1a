// Package peercli drives the ledger through the peer command line tool. Every
// call is a single process started with an argument vector, never a shell.
package peercli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"casevault/internal/ledger"
	"casevault/pkg/platform/sentinel"
)

var (
	txIDPattern      = regexp.MustCompile(`(?i)Transaction ID:\s*([a-f0-9]+)`)
	hashPattern      = regexp.MustCompile(`Qm[a-zA-Z0-9]{44}`)
	timestampPattern = regexp.MustCompile(`"timestamp":"(.*?)"`)
)

const invokeSuccessMarker = "Chaincode invoke successful"

// CommandRunner starts a process and collects its output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

type Config struct {
	Binary        string
	Orderer       string
	OrdererCA     string
	Channel       string
	Chaincode     string
	PeerAddress   string
	PeerTLSRootCA string
}

type Client struct {
	cfg    Config
	runner CommandRunner
}

type Option func(*Client)

func WithRunner(r CommandRunner) Option {
	return func(c *Client) {
		c.runner = r
	}
}

func New(cfg Config, opts ...Option) *Client {
	if cfg.Binary == "" {
		cfg.Binary = "peer"
	}
	c := &Client{cfg: cfg, runner: ExecRunner{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func chaincodeArgs(args ...string) (string, error) {
	raw, err := json.Marshal(struct {
		Args []string `json:"Args"`
	}{Args: args})
	return string(raw), err
}

// AnchorHash invokes AddEvidence with hash and returns the transaction id
// printed by the peer.
func (c *Client) AnchorHash(ctx context.Context, hash string) (string, error) {
	payload, err := chaincodeArgs("AddEvidence", hash)
	if err != nil {
		return "", fmt.Errorf("encode chaincode args: %w", err)
	}
	stdout, stderr, err := c.runner.Run(ctx, c.cfg.Binary,
		"chaincode", "invoke",
		"-o", c.cfg.Orderer,
		"--tls", "true",
		"--cafile", c.cfg.OrdererCA,
		"-C", c.cfg.Channel,
		"-n", c.cfg.Chaincode,
		"--peerAddresses", c.cfg.PeerAddress,
		"--tlsRootCertFiles", c.cfg.PeerTLSRootCA,
		"-c", payload,
	)
	if err != nil {
		return "", runError(ctx, err, stderr)
	}
	errOut := strings.TrimSpace(string(stderr))
	if errOut != "" && !strings.Contains(errOut, invokeSuccessMarker) {
		return "", fmt.Errorf("peer invoke: %s: %w", errOut, sentinel.ErrRejected)
	}
	output := strings.TrimSpace(string(stdout))
	if output == "" {
		output = errOut
	}
	m := txIDPattern.FindStringSubmatch(output)
	if m == nil {
		return "", fmt.Errorf("peer invoke: transaction id not found in output: %w", sentinel.ErrRejected)
	}
	return m[1], nil
}

// ResolveTransaction queries qscc for txID and extracts the anchored hash and
// the ledger timestamp from the raw transaction.
func (c *Client) ResolveTransaction(ctx context.Context, txID string) (*ledger.Transaction, error) {
	payload, err := chaincodeArgs("GetTransactionByID", c.cfg.Channel, txID)
	if err != nil {
		return nil, fmt.Errorf("encode chaincode args: %w", err)
	}
	stdout, stderr, err := c.runner.Run(ctx, c.cfg.Binary,
		"chaincode", "query",
		"-C", c.cfg.Channel,
		"-n", "qscc",
		"-c", payload,
	)
	if err != nil {
		return nil, runError(ctx, err, stderr)
	}
	if errOut := strings.TrimSpace(string(stderr)); errOut != "" {
		return nil, fmt.Errorf("peer query: %s: %w", errOut, sentinel.ErrRejected)
	}
	return parseTransaction(stdout)
}

func parseTransaction(raw []byte) (*ledger.Transaction, error) {
	hash := hashPattern.Find(raw)
	if hash == nil {
		return nil, fmt.Errorf("transaction carries no content hash: %w", sentinel.ErrNotFound)
	}
	ts := timestampPattern.FindSubmatch(raw)
	if ts == nil {
		return nil, fmt.Errorf("transaction carries no timestamp: %w", sentinel.ErrNotFound)
	}
	return &ledger.Transaction{Hash: string(hash), Timestamp: string(ts[1])}, nil
}

func runError(ctx context.Context, err error, stderr []byte) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("peer: %w", ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("peer exited with %d: %s: %w", exitErr.ExitCode(), strings.TrimSpace(string(stderr)), sentinel.ErrUnavailable)
	}
	return fmt.Errorf("peer: %w: %w", err, sentinel.ErrUnavailable)
}
