// jrt - disassemble, quicken and archive method capsules
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"

	"github.com/b-38438-org/JetBrainsRuntime/archive"
	"github.com/b-38438-org/JetBrainsRuntime/capsule"
	"github.com/b-38438-org/JetBrainsRuntime/manifest"
	"github.com/b-38438-org/JetBrainsRuntime/vm"

	_ "github.com/tliron/commonlog/simple"
)

var rewriteLog = commonlog.GetLogger("jrt.rewriter")

func main() {
	manifestDir := flag.String("manifest", "", "Directory containing jrt.toml (default: walk up from the working directory)")
	verbose := flag.Bool("verbose", false, "Verbose log output")
	noColor := flag.Bool("no-color", false, "Disable colorized listings")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: jrt [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  dis <capsule>      Disassemble a capsule file\n")
		fmt.Fprintf(os.Stderr, "  quicken <capsule>  Rewrite a capsule's method and list the quickened form\n")
		fmt.Fprintf(os.Stderr, "  store <capsule>    Store a capsule in the archive, print its hash\n")
		fmt.Fprintf(os.Stderr, "  show <hash>        Disassemble an archived capsule (hash prefixes allowed)\n")
		fmt.Fprintf(os.Stderr, "  ls                 List archived capsules\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  jrt dis size.capsule           # Print the listing\n")
		fmt.Fprintf(os.Stderr, "  jrt quicken size.capsule       # Print the listing after quickening\n")
		fmt.Fprintf(os.Stderr, "  jrt store size.capsule         # Archive it, keyed by content hash\n")
		fmt.Fprintf(os.Stderr, "  jrt show 3b4f                  # Fetch by hash prefix and disassemble\n")
	}
	flag.Parse()

	cfg, err := loadConfig(*manifestDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	verbosity := cfg.Output.Verbosity
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)
	if *noColor || !cfg.Output.Color {
		color.NoColor = true
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "dis":
		err = cmdDis(rest)
	case "quicken":
		err = cmdQuicken(cfg, rest)
	case "store":
		err = cmdStore(cfg, rest)
	case "show":
		err = cmdShow(cfg, rest)
	case "ls":
		err = cmdLs(cfg, rest)
	default:
		fmt.Fprintf(os.Stderr, "jrt: unknown command %q\n\n", cmd)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the manifest: an explicit directory must hold one,
// otherwise the walk up from the working directory may come up empty and
// defaults apply.
func loadConfig(dir string) (*manifest.Manifest, error) {
	if dir != "" {
		return manifest.Load(dir)
	}
	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = manifest.Default()
	}
	return m, nil
}

func readCapsule(path string) (*capsule.Capsule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return capsule.Unmarshal(data)
}

func openArchive(cfg *manifest.Manifest) (*archive.Archive, error) {
	return archive.Open(cfg.ArchivePath())
}

func oneArg(rest []string, usage string) (string, error) {
	if len(rest) != 1 {
		return "", fmt.Errorf("usage: jrt %s", usage)
	}
	return rest[0], nil
}

func cmdDis(rest []string) error {
	path, err := oneArg(rest, "dis <capsule>")
	if err != nil {
		return err
	}
	c, err := readCapsule(path)
	if err != nil {
		return err
	}
	m, err := c.ToMethod()
	if err != nil {
		return err
	}
	printListing(os.Stdout, c, m)
	return nil
}

func cmdQuicken(cfg *manifest.Manifest, rest []string) error {
	path, err := oneArg(rest, "quicken <capsule>")
	if err != nil {
		return err
	}
	c, err := readCapsule(path)
	if err != nil {
		return err
	}
	m, err := c.ToMethod()
	if err != nil {
		return err
	}

	if !cfg.Rewriter.RewriteBytecodes {
		rewriteLog.Info("quickening disabled by manifest, listing the direct form")
		printListing(os.Stdout, c, m)
		return nil
	}
	if err := vm.Rewrite(m, vm.Options{RewriteBytecodes: true}); err != nil {
		return err
	}
	rewriteLog.Infof("quickened %s%s: %d cache entries", c.Name, c.Descriptor, m.Constants().Cache().Length())
	printListing(os.Stdout, c, m)
	return nil
}

func cmdStore(cfg *manifest.Manifest, rest []string) error {
	path, err := oneArg(rest, "store <capsule>")
	if err != nil {
		return err
	}
	c, err := readCapsule(path)
	if err != nil {
		return err
	}
	a, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	hash, err := a.Put(c)
	if err != nil {
		return err
	}
	fmt.Printf("%x\n", hash)
	return nil
}

func cmdShow(cfg *manifest.Manifest, rest []string) error {
	prefix, err := oneArg(rest, "show <hash>")
	if err != nil {
		return err
	}
	a, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	hash, err := resolveHash(a, prefix)
	if err != nil {
		return err
	}
	c, err := a.Get(hash)
	if err != nil {
		return err
	}
	m, err := c.ToMethod()
	if err != nil {
		return err
	}
	printListing(os.Stdout, c, m)
	return nil
}

func cmdLs(cfg *manifest.Manifest, rest []string) error {
	if len(rest) != 0 {
		return errors.New("usage: jrt ls")
	}
	a, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	entries, err := a.List()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Println(e)
	}
	return nil
}
