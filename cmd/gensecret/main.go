package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

const defaultSecretKeyBytesLen = 32

func main() {
	if err := run(os.Stdout, rand.Reader, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error while generating secret key: %v\n", err)
		os.Exit(1)
	}
}

// run writes random hex encoded key suitable for SECRET_KEY
func run(out io.Writer, random io.Reader, args []string) error {
	fs := pflag.NewFlagSet("gensecret", pflag.ContinueOnError)
	size := fs.IntP("bytes", "b", defaultSecretKeyBytesLen, "Key length in bytes")
	asEnv := fs.Bool("env", false, "Print as SECRET_KEY=... line ready for .env")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *size < 16 {
		return fmt.Errorf("key of %d bytes is too short, use at least 16", *size)
	}

	b := make([]byte, *size)
	if _, err := io.ReadFull(random, b); err != nil {
		return err
	}

	key := hex.EncodeToString(b)
	if *asEnv {
		key = "SECRET_KEY=" + key
	}

	_, err := fmt.Fprintln(out, key)
	return err
}
