package options

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	helpColumns         = 80
	paddingBeforeOption = 2
	paddingBeforeDesc   = 2
	minWrapLength       = 10
)

// helpSection is one block of the rendered help: the ungrouped options
// (nil group) or a titled group.
type helpSection struct {
	group *Group
	lines []helpLine
}

// helpLine is one option row: its surviving aliases, the argument
// placeholder, and the descriptive text.
type helpLine struct {
	aliases []string
	metavar string
	text    string
}

func (l helpLine) invocation() string {
	left := strings.Join(l.aliases, ", ")
	if l.metavar != "" {
		left += " " + l.metavar
	}

	return left
}

// Help renders the parser's help message: usage line, description, then
// the option listings in synthesis order. The result is trimmed of
// surrounding whitespace.
func (p *Parser) Help() string {
	buf := &bytes.Buffer{}

	p.writeUsage(buf)

	if p.cfg.description != "" {
		fmt.Fprintln(buf)
		fmt.Fprintln(buf, wrapText(p.cfg.description, helpColumns, ""))
	}

	descStart := p.descriptionStart()

	for _, section := range p.sections {
		if len(section.lines) == 0 {
			continue
		}

		if section.group != nil {
			fmt.Fprintf(buf, "\n%s:\n", section.group.Title)

			if section.group.Description != "" {
				indent := strings.Repeat(" ", paddingBeforeOption)
				fmt.Fprintln(buf, indent+wrapText(
					section.group.Description,
					helpColumns-paddingBeforeOption,
					indent))
			}
		}

		for _, line := range section.lines {
			p.writeLine(buf, line, descStart)
		}
	}

	return strings.TrimSpace(buf.String())
}

func (p *Parser) writeUsage(buf *bytes.Buffer) {
	if p.cfg.usage == "" {
		return
	}

	if p.cfg.prog != "" {
		fmt.Fprintf(buf, "Usage: %s %s\n", p.cfg.prog, p.cfg.usage)

		return
	}

	fmt.Fprintf(buf, "Usage: %s\n", p.cfg.usage)
}

func (p *Parser) writeLine(buf *bytes.Buffer, line helpLine, descStart int) {
	left := strings.Repeat(" ", paddingBeforeOption) + line.invocation()
	fmt.Fprint(buf, left)

	if line.text == "" {
		fmt.Fprintln(buf)

		return
	}

	fmt.Fprint(buf, strings.Repeat(" ", descStart-len(left)))

	fmt.Fprintln(buf, wrapText(
		line.text,
		helpColumns-descStart,
		strings.Repeat(" ", descStart)))
}

// descriptionStart computes the column where option descriptions begin,
// aligned on the longest invocation across all sections.
func (p *Parser) descriptionStart() int {
	longest := 0

	for _, section := range p.sections {
		for _, line := range section.lines {
			if l := len(line.invocation()); l > longest {
				longest = l
			}
		}
	}

	return paddingBeforeOption + longest + paddingBeforeDesc
}

// wrapText wraps text at spaces to fit in wrapLen columns, prefixing
// continuation lines with prefix.
func wrapText(text string, wrapLen int, prefix string) string {
	if wrapLen < minWrapLength {
		wrapLen = minWrapLength
	}

	var out string

	for _, line := range strings.Split(text, "\n") {
		var wrapped string

		line = strings.TrimSpace(line)

		for len(line) > wrapLen {
			suffix := ""

			pos := strings.LastIndex(line[:wrapLen], " ")
			if pos < 0 {
				pos = wrapLen - 1
				suffix = "-\n"
			}

			if wrapped != "" {
				wrapped += "\n" + prefix
			}

			wrapped += strings.TrimSpace(line[:pos]) + suffix
			line = strings.TrimSpace(line[pos:])
		}

		if line != "" {
			if wrapped != "" {
				wrapped += "\n" + prefix
			}

			wrapped += line
		}

		if out != "" {
			out += "\n"

			if wrapped != "" {
				out += prefix
			}
		}

		out += wrapped
	}

	return out
}
