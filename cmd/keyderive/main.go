// Package main provides keyderive, a command line front end for deriving and
// validating multi-chain addresses from a BIP39 mnemonic.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/klingon-exchange/keyderive/internal/chain"
	"github.com/klingon-exchange/keyderive/internal/config"
	"github.com/klingon-exchange/keyderive/internal/mnemonic"
	"github.com/klingon-exchange/keyderive/internal/wallet"
	"github.com/klingon-exchange/keyderive/pkg/helpers"
	"github.com/klingon-exchange/keyderive/pkg/logging"
)

var (
	version = "0.1.0-dev"
	commit  = "unknown"
)

// mnemonicEnv names the environment variable read before prompting.
const mnemonicEnv = "KEYDERIVE_MNEMONIC"

func main() {
	var (
		configFile  = flag.String("config", config.ConfigPath(config.DefaultDir), "Config file path")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error), overrides config")
		generate    = flag.Int("generate", 0, "Generate a new mnemonic with this many words (12 or 24) and exit")
		chains      = flag.String("chain", "", "Comma-separated chain ids or EVM chain ids (default: config, else all)")
		account     = flag.Int64("account", -1, "BIP44 account index (default: config)")
		path        = flag.String("path", "", "Explicit derivation path, requires exactly one -chain")
		validate    = flag.String("validate", "", "Validate this address for the -chain ids and exit")
		encode      = flag.String("encode", "", "Encode this hex public key for the -chain ids and exit (no mnemonic needed)")
		showPubKey  = flag.Bool("pubkey", false, "Print public keys instead of addresses")
		askPass     = flag.Bool("passphrase", false, "Prompt for a BIP39 passphrase")
		listChains  = flag.Bool("list", false, "List supported chains with their paths and exit")
		showVersion = flag.Bool("version", false, "Show version and exit")
	)
	flag.Parse()

	logging.SetDefault(logging.New(&logging.Config{Level: *logLevel, TimeFormat: "15:04:05"}))

	if *showVersion {
		fmt.Printf("keyderive %s (commit: %s)\n", version, commit)
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		logging.Fatal("Failed to load config", "error", err)
	}

	// CLI flags take precedence over the config file
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *chains != "" {
		cfg.Derivation.Chains = parseChains(*chains)
	}
	if acct, set, err := accountOverride(*account); err != nil {
		logging.Fatal("Invalid -account", "error", err)
	} else if set {
		cfg.Derivation.Account = acct
	}
	if err := cfg.Validate(); err != nil {
		logging.Fatal("Invalid configuration", "error", err)
	}

	logging.SetDefault(logging.New(cfg.LoggerConfig()))
	logging.Debug("Config loaded", "path", config.ExpandPath(*configFile))

	svc := wallet.NewService(&wallet.ServiceConfig{
		Logger:  logging.GetDefault(),
		Workers: cfg.WorkerCount(),
	})

	out := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer out.Flush()

	switch {
	case *generate != 0:
		strength, err := strengthForWords(*generate)
		if err != nil {
			logging.Fatal("Cannot generate mnemonic", "error", err)
		}
		m, err := svc.GenerateMnemonic(strength)
		if err != nil {
			logging.Fatal("Cannot generate mnemonic", "error", err)
		}
		fmt.Fprintln(out, m)
		return

	case *listChains:
		for _, id := range svc.SupportedChains() {
			p, err := svc.GetDerivationPath(id, cfg.Derivation.Account)
			if err != nil {
				logging.Fatal("Cannot build path", "chain", id, "error", err)
			}
			d, _ := chain.Get(id)
			evmID := "-"
			if d.IsEVM() {
				evmID = strconv.FormatUint(d.EVMChainID, 10)
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n", id, d.Family, d.NativeToken, evmID, p)
		}
		return

	case *validate != "":
		if len(cfg.Derivation.Chains) == 0 {
			logging.Fatal("-validate requires -chain")
		}
		ok := true
		for _, id := range cfg.Derivation.Chains {
			valid := svc.ValidateAddress(*validate, id)
			ok = ok && valid
			fmt.Fprintf(out, "%s\t%s\t%t\n", id, *validate, valid)
		}
		out.Flush()
		if !ok {
			os.Exit(1)
		}
		return

	case *encode != "":
		if len(cfg.Derivation.Chains) == 0 {
			logging.Fatal("-encode requires -chain")
		}
		pub, err := helpers.HexToBytes(strings.TrimSpace(*encode))
		if err != nil {
			logging.Fatal("Public key is not hex", "error", err)
		}
		for _, id := range cfg.Derivation.Chains {
			addr, err := svc.EncodePublicKey(pub, id)
			if err != nil {
				logging.Fatal("Cannot encode public key", "chain", id, "error", err)
			}
			fmt.Fprintf(out, "%s\t%s\n", id, addr)
		}
		return
	}

	m, err := readSecret(mnemonicEnv, "Mnemonic: ", os.Stdin, os.Stderr)
	if err != nil {
		logging.Fatal("Cannot read mnemonic", "error", err)
	}
	if !svc.ValidateMnemonic(m) {
		logging.Fatal("Invalid mnemonic", "error", mnemonic.Check(m))
	}

	var passphrase string
	if *askPass {
		passphrase, err = readSecret("", "Passphrase: ", os.Stdin, os.Stderr)
		if err != nil {
			logging.Fatal("Cannot read passphrase", "error", err)
		}
	}

	if *path != "" {
		if len(cfg.Derivation.Chains) != 1 {
			logging.Fatal("-path requires exactly one -chain")
		}
		id := cfg.Derivation.Chains[0]
		addr, err := svc.DeriveAddressAtPath(m, passphrase, id, *path)
		if err != nil {
			logging.Fatal("Derivation failed", "chain", id, "error", err)
		}
		fmt.Fprintf(out, "%s\t%s\t%s\n", id, *path, addr)
		return
	}

	if *showPubKey {
		for _, id := range cfg.ChainIDs() {
			kp, err := svc.DeriveKeyPair(m, passphrase, id, cfg.Derivation.Account)
			if err != nil {
				logging.Fatal("Derivation failed", "chain", id, "error", err)
			}
			fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", id, kp.Path, kp.Curve, kp.PublicKeyHex())
			kp.Zero()
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ids := cfg.ChainIDs()
	results, err := svc.DeriveAddresses(ctx, m, passphrase, cfg.Derivation.Account, ids)
	if err != nil && results == nil {
		logging.Fatal("Derivation failed", "error", err)
	}

	failed := writeResults(out, ids, results)
	out.Flush()
	if err != nil {
		logging.Error("Derivation interrupted", "error", err)
	}
	if failed > 0 {
		logging.Warn("Some chains failed", "failed", failed, "total", len(results))
	}
	if failed > 0 || err != nil {
		os.Exit(1)
	}
}

// accountOverride interprets the -account flag. -1 means the flag was not
// given; other negative values and indexes past the hardened range are rejected.
func accountOverride(v int64) (uint32, bool, error) {
	switch {
	case v == -1:
		return 0, false, nil
	case v < 0:
		return 0, false, fmt.Errorf("%w: account %d is negative", chain.ErrInvalidPath, v)
	case v > int64(chain.MaxIndex):
		return 0, false, fmt.Errorf("%w: account %d exceeds %d", chain.ErrInvalidPath, v, chain.MaxIndex)
	}
	return uint32(v), true, nil
}

// writeResults prints one line per chain in ids order and returns the failure count.
func writeResults(w io.Writer, ids []string, results map[string]wallet.Result) int {
	failed := 0
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		r, ok := results[id]
		switch {
		case !ok:
			failed++
			fmt.Fprintf(w, "%s\t-\terror: no result\n", id)
		case r.Err != nil:
			failed++
			var de *wallet.DerivationError
			cause := r.Err
			if errors.As(r.Err, &de) {
				cause = de.Err
			}
			fmt.Fprintf(w, "%s\t-\terror: %v\n", id, cause)
		default:
			fmt.Fprintf(w, "%s\t%s\t%s\n", id, r.Path, r.Address)
		}
	}
	return failed
}

// parseChains splits a comma-separated list, dropping blanks. Numeric entries
// naming a registered EVM chain id (1, 137, ...) are replaced by its chain id string.
func parseChains(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		id = strings.TrimSpace(strings.ToLower(id))
		if id == "" {
			continue
		}
		if n, err := strconv.ParseUint(id, 10, 64); err == nil {
			if d, ok := chain.GetByEVMChainID(n); ok {
				id = d.ID
			}
		}
		ids = append(ids, id)
	}
	return ids
}

// strengthForWords maps a mnemonic word count to entropy bits.
func strengthForWords(words int) (int, error) {
	switch words {
	case 12:
		return mnemonic.Strength128, nil
	case 24:
		return mnemonic.Strength256, nil
	default:
		return 0, fmt.Errorf("%w: %d words (want 12 or 24)", mnemonic.ErrInvalidStrength, words)
	}
}

// readSecret returns the value of env when set, otherwise reads a line from in.
// Terminal input is read without echo.
func readSecret(env, prompt string, in *os.File, promptOut io.Writer) (string, error) {
	if env != "" {
		if v := os.Getenv(env); v != "" {
			return v, nil
		}
	}

	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(promptOut, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(promptOut)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	return readLine(in)
}

// readLine reads one line from a pipe or file.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
