package insights

import (
	"bufio"
	"os"
	"strings"

	"github.com/julianstephens/pocket/internal/cli"
	"github.com/julianstephens/pocket/internal/coach"
)

type CoachCmd struct {
	Message []string `arg:"" optional:"" help:"Message for the coach. Starts a chat session when omitted."`
}

func (c *CoachCmd) Run(ctx *cli.Context) error {
	if len(c.Message) > 0 {
		ctx.Println(ctx.Coach.Reply(strings.Join(c.Message, " ")))
		return nil
	}

	ctx.Printf("coach> %s\n", ctx.Coach.Greeting(coach.English))
	ctx.Println("(type \"exit\" or press Ctrl-D to leave)")

	in := ctx.In
	if in == nil {
		in = os.Stdin
	}
	scanner := bufio.NewScanner(in)
	for {
		ctx.Printf("you> ")
		if !scanner.Scan() {
			ctx.Println()
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(text) {
		case "":
			continue
		case "exit", "quit", "退出":
			return nil
		}
		ctx.Printf("coach> %s\n", ctx.Coach.Reply(text))
	}
}
