package pkg

import (
	"io"

	"github.com/mitchellh/colorstring"
)

func PrintTask(out io.Writer, msg string) {
	colorstring.Fprintf(out, "[blue][bold]==>[default] %s\n", msg)
}

func PrintSubtask(out io.Writer, msg string) {
	colorstring.Fprintf(out, "[green][bold]  ->[reset] %s\n", msg)
}

func PrintError(out io.Writer, msg string) {
	colorstring.Fprintf(out, "[red][bold]  ->[reset] %s\n", msg)
}
