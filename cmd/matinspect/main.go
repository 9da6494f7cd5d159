// matinspect lists the variables of a Level 5 MAT-file, dumps them as
// YAML or CBOR, and can re-encode the file.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"github.com/zeebo/blake3"

	"github.com/robert-malhotra/go-mat/mat"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type config struct {
	format   string
	digest   bool
	rewrite  string
	compress bool
	verbose  bool
}

func run(args []string, stdout, stderr io.Writer) error {
	var cfg config
	flagSet := pflag.NewFlagSet("matinspect", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&cfg.format, "format", "text", "output format: text, yaml or cbor")
	flagSet.BoolVar(&cfg.digest, "digest", false, "print the blake3 digest of each stored element")
	flagSet.StringVar(&cfg.rewrite, "rewrite", "", "re-encode all variables into this file")
	flagSet.BoolVar(&cfg.compress, "compress", false, "with --rewrite, store variables compressed")
	flagSet.BoolVarP(&cfg.verbose, "verbose", "v", false, "log debug output to stderr")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: matinspect [flags] FILE\n\n")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return fmt.Errorf("expected exactly one file, got %d", flagSet.NArg())
	}
	switch cfg.format {
	case "text", "yaml", "cbor":
	default:
		return fmt.Errorf("unknown format %q", cfg.format)
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return inspect(flagSet.Arg(0), cfg, logger, stdout)
}

func inspect(path string, cfg config, logger *slog.Logger, stdout io.Writer) error {
	f, err := mat.Open(path, mat.WithLogger(logger))
	if err != nil {
		return err
	}
	defer f.Close()

	var raw *os.File
	if cfg.digest {
		if raw, err = os.Open(path); err != nil {
			return err
		}
		defer raw.Close()
	}

	doc := document{Header: headerDoc(f.Header())}
	var vars []*mat.Variable
	for {
		v, err := f.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		entry := variableDoc(v)
		if raw != nil {
			if entry.Digest, err = digest(raw, v.Offset, v.Size); err != nil {
				return fmt.Errorf("digest of %q: %w", v.Name, err)
			}
		}
		doc.Variables = append(doc.Variables, entry)
		vars = append(vars, v)
	}

	if err := render(stdout, cfg.format, doc); err != nil {
		return err
	}

	if cfg.rewrite != "" {
		if err := rewrite(cfg.rewrite, vars, cfg.compress, logger); err != nil {
			return fmt.Errorf("rewriting to %s: %w", cfg.rewrite, err)
		}
		logger.Info("rewrote file", "path", cfg.rewrite, "variables", len(vars), "compressed", cfg.compress)
	}
	return nil
}

// digest hashes the stored bytes of one element.
func digest(r io.ReaderAt, offset, size int64) (string, error) {
	h := blake3.New()
	if _, err := io.Copy(h, io.NewSectionReader(r, offset, size)); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func rewrite(path string, vars []*mat.Variable, compress bool, logger *slog.Logger) error {
	opts := []mat.Option{mat.WithLogger(logger)}
	if compress {
		opts = append(opts, mat.WithCompression(-1))
	}
	w, err := mat.Create(path, opts...)
	if err != nil {
		return err
	}
	for _, v := range vars {
		if err := w.Write(v.Name, v.Value); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}
