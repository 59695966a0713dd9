package cli

import "fmt"

func Run(args []string) error {
	if len(args) == 0 {
		printRootUsage()
		return nil
	}

	switch args[0] {
	case "download":
		return runDownload(args[1:])
	case "import":
		return runImport(args[1:])
	case "status":
		return runStatus(args[1:])
	case "settings":
		return runSettings(args[1:])
	case "manage":
		return runManage(args[1:])
	case "doctor":
		return runDoctor(args[1:])
	case "help", "-h", "--help":
		printRootUsage()
		return nil
	default:
		printRootUsage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printRootUsage() {
	fmt.Println("clip-archiver: batch video downloader with an xlsx metadata ledger")
	fmt.Println()
	fmt.Println("Quick Start:")
	fmt.Println("  clip-archiver doctor")
	fmt.Println("  clip-archiver download <url> [<url> ...]")
	fmt.Println("  clip-archiver download --file urls.txt --base-name trip")
	fmt.Println("  clip-archiver status")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  download  download URL(s) and record each item in the metadata ledger")
	fmt.Println("  import    rebuild ledger rows from .info.json sidecars of earlier downloads")
	fmt.Println("  status    describe the metadata ledger file")
	fmt.Println("  settings  show/update stored download preferences")
	fmt.Println("  manage    interactive settings editor")
	fmt.Println("  doctor    run dependency and filesystem preflight checks")
	fmt.Println()
	fmt.Println("Notes:")
	fmt.Println("  - Use --json on commands for machine-readable output")
	fmt.Println("  - With --base-name, files are numbered <base>__1.<ext>, <base>__2.<ext>, ...")
	fmt.Println("    and numbering resumes past existing files after a restart")
}
