package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/open-sauced/pizza/analyzer/pkg/insights"
)

// ConsoleObserver prints every notification it receives to a writer,
// typically os.Stdout. It may be shared by concurrent streams.
type ConsoleObserver struct {
	name string

	lock sync.Mutex
	out  io.Writer
}

// NewConsoleObserver returns a ConsoleObserver prefixing its lines with name.
func NewConsoleObserver(name string, out io.Writer) *ConsoleObserver {
	return &ConsoleObserver{
		name: name,
		out:  out,
	}
}

func (c *ConsoleObserver) OnNext(value insights.AuthorCommits) {
	c.printf("%s: Autor: %s\nBroj commitova: %d\n\n", c.name, value.Author, value.CommitCount)
}

func (c *ConsoleObserver) OnError(err error) {
	c.printf("%s: Došlo je do greške: %v\n", c.name, err)
}

func (c *ConsoleObserver) OnCompleted() {
	c.printf("%s: Završeno praćenje repozitorijuma.\n", c.name)
}

func (c *ConsoleObserver) printf(format string, args ...interface{}) {
	c.lock.Lock()
	defer c.lock.Unlock()

	//nolint:errcheck
	fmt.Fprintf(c.out, format, args...)
}
