package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"sciqlop-cache/src/api"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	runCommandLine()
}

func runCommandLine() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("sciqlop-cache v%s\n", Version)
			return
		case "help":
			printHelp()
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
			os.Exit(1)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		command := strings.ToUpper(parts[0])
		var success bool
		var result string

		switch command {
		case "INIT":
			if len(parts) != 3 {
				fmt.Println("ERROR: INIT requires 2 arguments: root_path max_size")
				continue
			}
			maxSize, err := strconv.ParseUint(parts[2], 10, 64)
			if err != nil {
				fmt.Println("ERROR: invalid number format")
				continue
			}
			success = api.Init(parts[1], maxSize)
			result = "initialized"

		case "SET", "ADD":
			if len(parts) != 3 && len(parts) != 4 {
				fmt.Printf("ERROR: %s requires 2 or 3 arguments: key value [ttl_seconds]\n", command)
				continue
			}
			ttl := 0.0
			if len(parts) == 4 {
				var err error
				ttl, err = strconv.ParseFloat(parts[3], 64)
				if err != nil {
					fmt.Println("ERROR: invalid number format")
					continue
				}
			}
			if command == "SET" {
				success = api.Set(parts[1], []byte(parts[2]), ttl)
				result = "set"
			} else {
				success = api.Add(parts[1], []byte(parts[2]), ttl)
				result = "added"
			}

		case "GET", "POP":
			if len(parts) != 2 {
				fmt.Printf("ERROR: %s requires 1 argument: key\n", command)
				continue
			}
			var content []byte
			if command == "GET" {
				content = api.Get(parts[1])
			} else {
				content = api.Pop(parts[1])
			}
			if content != nil {
				fmt.Printf("OK: %s\n", string(content))
			} else {
				fmt.Println("MISS: key not found")
			}
			continue

		case "DEL":
			if len(parts) != 2 {
				fmt.Println("ERROR: DEL requires 1 argument: key")
				continue
			}
			success = api.Del(parts[1])
			result = "deleted"

		case "TOUCH":
			if len(parts) != 3 {
				fmt.Println("ERROR: TOUCH requires 2 arguments: key ttl_seconds")
				continue
			}
			ttl, err := strconv.ParseFloat(parts[2], 64)
			if err != nil {
				fmt.Println("ERROR: invalid number format")
				continue
			}
			success = api.Touch(parts[1], ttl)
			result = "touched"

		case "EXISTS":
			if len(parts) != 2 {
				fmt.Println("ERROR: EXISTS requires 1 argument: key")
				continue
			}
			if api.Exists(parts[1]) {
				fmt.Println("OK: true")
			} else {
				fmt.Println("OK: false")
			}
			continue

		case "COUNT":
			fmt.Printf("OK: %d\n", api.Count())
			continue

		case "SIZE":
			fmt.Printf("OK: %d\n", api.Size())
			continue

		case "KEYS":
			fmt.Printf("OK: %s\n", strings.Join(api.Keys(), " "))
			continue

		case "EXPIRE":
			success = api.Expire()
			result = "expired"

		case "CLEAR":
			success = api.Clear()
			result = "cleared"

		case "CHECK":
			if api.Check() {
				fmt.Println("OK: true")
			} else {
				fmt.Println("OK: false")
			}
			continue

		case "CLOSE":
			success = api.Close()
			result = "closed"

		default:
			fmt.Printf("ERROR: unknown command: %s\n", command)
			continue
		}

		if success {
			fmt.Printf("OK: %s\n", result)
		} else {
			fmt.Printf("ERROR: failed to %s\n", result)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `sciqlop-cache - persistent key/value cache

USAGE:
    sciqlop-cache [COMMAND]

COMMANDS:
    help     Show this help message
    version  Show version information

INTERACTIVE MODE:
    Run without arguments to enter interactive mode.
    Send simple text commands:

    Available commands:
    INIT root_path max_size
    SET key value [ttl_seconds]
    ADD key value [ttl_seconds]
    GET key
    POP key
    DEL key
    TOUCH key ttl_seconds
    EXISTS key
    COUNT
    SIZE
    KEYS
    EXPIRE
    CLEAR
    CHECK
    CLOSE

    Responses:
    OK: <result>     - Success
    ERROR: <reason>  - Failure
    MISS: <reason>   - Cache miss

EXAMPLES:
    echo 'INIT ./cache 1000' | sciqlop-cache
    echo 'SET user123 data 3600' | sciqlop-cache
    echo 'GET user123' | sciqlop-cache
    echo 'DEL user123' | sciqlop-cache
    echo 'CLOSE' | sciqlop-cache
`
	fmt.Print(help)
}
