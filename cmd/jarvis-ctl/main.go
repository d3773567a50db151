package main

import (
	"fmt"
	"os"
	"strings"

	cli "github.com/spf13/pflag"

	"github.com/VanshGautamDev/jarvis-ai-desktop-assistant/internal/ipc"
)

const usage = `Usage: jarvis-ctl [--socket PATH] <command> [args...]

Commands:
  trigger          wake the assistant as if the wake phrase was heard
  text <command>   run a command as typed text
  say <message>    speak a message aloud
  audio <file>     transcribe a recording and run it as a command
  status           show a one-line daemon status
`

func main() {
	socket := cli.String("socket", ipc.DefaultSocket, "Daemon control socket path")
	cli.Parse()

	args := cli.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	req := ipc.Request{
		Cmd: args[0],
		Arg: strings.Join(args[1:], " "),
	}

	reply, err := ipc.Send(*socket, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "jarvis-ctl:", err)
		os.Exit(1)
	}

	fmt.Println(reply.Response)
	if !reply.OK {
		os.Exit(1)
	}
}
