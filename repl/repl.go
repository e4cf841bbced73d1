// Package repl implements the Read-Eval-Print Loop for this module's C-like
// scripting language.
//
// The REPL provides an interactive interface for users to enter source
// lines, have them compiled and run on the stack VM, and see the results
// immediately. It uses the Charm libraries (Bubbletea, Bubbles, and
// Lipgloss) to drive a styled terminal interface with command history and a
// spinner shown while a line is compiling/running.
//
// Key features:
//   - Interactive command input and execution
//   - Command history tracking
//   - Styled output with different colors for results and errors
//   - Persistent global environment across commands
//   - A ctrl+b toggle that renders the disassembled bytecode of the most
//     recently compiled line beneath its result
//
// The main entry point is the Start function, which initializes and runs
// the REPL.
package repl

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/clscript/clscript/compiler"
	"github.com/clscript/clscript/lexer"
	"github.com/clscript/clscript/object"
	"github.com/clscript/clscript/parser"
	"github.com/clscript/clscript/token"
	"github.com/clscript/clscript/vm"
)

const (
	// Prompt is the default prompt for the REPL.
	Prompt = ">> "

	// ContPrompt is the continuation prompt used in multiline input mode.
	ContPrompt = ".. "
)

// Options contains configuration options for the REPL.
type Options struct {
	NoColor bool // Disable syntax highlighting and colored output
	Debug   bool // Show the disassembled bytecode of every evaluated line
}

// Start initializes and runs the REPL with the given username and options.
func Start(username string, options Options) {
	p := tea.NewProgram(initialModel(username, options))
	if _, err := p.Run(); err != nil {
		fmt.Println("Error running program:", err)
	}
}

// Styling
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87"))

	parseErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	runtimeErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF8700")).
				Bold(true)

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	disasmStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF79C6")).
			Bold(true)

	identifierStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#F8F8F2"))

	literalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	operatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	delimiterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BD93F9"))

	stringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))
)

// ErrorType represents the type of error that occurred while evaluating a line.
type ErrorType int

const (
	// NoError indicates that no error occurred.
	NoError ErrorType = iota
	// ParseError indicates an error during parsing.
	ParseError
	// RuntimeError indicates an error during compilation or VM execution.
	RuntimeError
)

// evalResultMsg is the async result of evaluating one line.
type evalResultMsg struct {
	output    string
	disasm    string
	isError   bool
	errorType ErrorType
	elapsed   time.Duration
}

type historyEntry struct {
	input          string
	output         string
	disasm         string
	isError        bool
	errorType      ErrorType
	evaluationTime time.Duration
}

// model is the Bubbletea model backing the REPL.
type model struct {
	textInput       textinput.Model
	history         []historyEntry
	scope           *object.Environment
	username        string
	evaluating      bool
	currentInput    string
	multilineBuffer string
	isMultiline     bool
	spinner         spinner.Model
	options         Options
	showDisasm      bool
}

func (m model) applyStyle(style lipgloss.Style, text string) string {
	if m.options.NoColor {
		return text
	}
	return style.Render(text)
}

func initialModel(username string, options Options) model {
	ti := textinput.New()
	ti.Placeholder = "Enter code"
	ti.Focus()
	ti.Width = 80
	ti.Prompt = promptStyle.Render(Prompt)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{
		textInput: ti,
		scope:     object.NewGlobalEnvironment(object.Builtins()),
		username:  username,
		spinner:   s,
		options:   options,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// isBalanced checks if brackets, braces, and parentheses are balanced,
// used to decide whether the REPL should enter multiline input mode.
func isBalanced(input string) bool {
	var stack []rune
	for _, char := range input {
		switch char {
		case '(', '{', '[':
			stack = append(stack, char)
		case ')':
			if len(stack) == 0 || stack[len(stack)-1] != '(' {
				return false
			}
			stack = stack[:len(stack)-1]
		case '}':
			if len(stack) == 0 || stack[len(stack)-1] != '{' {
				return false
			}
			stack = stack[:len(stack)-1]
		case ']':
			if len(stack) == 0 || stack[len(stack)-1] != '[' {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

// evalCmd compiles and runs input asynchronously against scope.
func evalCmd(input string, scope *object.Environment) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		l := lexer.New(input)
		p := parser.New(l)
		program := p.ParseProgram()

		if errs := p.Errors(); len(errs) > 0 {
			return evalResultMsg{
				output:    formatParseErrors(errs),
				isError:   true,
				errorType: ParseError,
				elapsed:   time.Since(start),
			}
		}

		instrs, err := compiler.Compile(program)
		if err != nil {
			return evalResultMsg{
				output:    formatRuntimeError(err.Error()),
				isError:   true,
				errorType: RuntimeError,
				elapsed:   time.Since(start),
			}
		}

		result, err := vm.New(instrs).Run(scope, 0)
		if err != nil {
			return evalResultMsg{
				output:    formatRuntimeError(err.Error()),
				disasm:    instrs.String(),
				isError:   true,
				errorType: RuntimeError,
				elapsed:   time.Since(start),
			}
		}

		output := "undefined"
		if result != nil {
			output = result.Inspect()
		}
		return evalResultMsg{
			output:  output,
			disasm:  instrs.String(),
			elapsed: time.Since(start),
		}
	}
}

func (m model) formatError(style *lipgloss.Style, entry *historyEntry, s *strings.Builder) {
	if m.options.NoColor {
		s.WriteString(entry.output)
	} else {
		s.WriteString(style.Render(entry.output))
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.evaluating {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case evalResultMsg:
		m.evaluating = false
		m.history = append(m.history, historyEntry{
			input:          m.currentInput,
			output:         msg.output,
			disasm:         msg.disasm,
			isError:        msg.isError,
			errorType:      msg.errorType,
			evaluationTime: msg.elapsed,
		})
		m.currentInput = ""
		return m, nil

	case tea.KeyMsg:
		if m.evaluating && msg.Type != tea.KeyCtrlC {
			return m, m.spinner.Tick
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyCtrlB:
			m.showDisasm = !m.showDisasm
			return m, nil
		case tea.KeyEnter:
			input := m.textInput.Value()
			if input == "" {
				if m.isMultiline {
					if m.multilineBuffer == "" {
						m.isMultiline = false
						return m, nil
					}
					m.evaluating = true
					m.currentInput = m.multilineBuffer
					m.textInput.SetValue("")
					m.isMultiline = false
					buffer := m.multilineBuffer
					m.multilineBuffer = ""
					return m, evalCmd(buffer, m.scope)
				}
				return m, nil
			}

			if m.isMultiline {
				m.multilineBuffer += "\n" + input
				m.textInput.SetValue("")
				if isBalanced(m.multilineBuffer) {
					m.evaluating = true
					m.currentInput = m.multilineBuffer
					m.isMultiline = false
					buffer := m.multilineBuffer
					m.multilineBuffer = ""
					return m, evalCmd(buffer, m.scope)
				}
				return m, nil
			}

			if !isBalanced(input) {
				m.isMultiline = true
				m.multilineBuffer = input
				m.textInput.SetValue("")
				return m, nil
			}

			m.evaluating = true
			m.currentInput = input
			m.textInput.SetValue("")
			return m, evalCmd(input, m.scope)
		}
	}

	if !m.evaluating {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	if m.evaluating {
		return m, m.spinner.Tick
	}
	return m, cmd
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(m.applyStyle(titleStyle, " Scripting Language REPL "))
	s.WriteString("\n")

	if m.username != "" {
		s.WriteString(fmt.Sprintf("\nHello %s! Feel free to type in commands\n", m.username))
	}
	s.WriteString("\n")

	for _, entry := range m.history {
		lines := strings.Split(entry.input, "\n")
		for i, line := range lines {
			if i == 0 {
				s.WriteString(m.applyStyle(promptStyle, Prompt))
			} else {
				s.WriteString(m.applyStyle(promptStyle, ContPrompt))
			}
			s.WriteString(m.highlightCode(line))
			s.WriteString("\n")
		}

		if entry.isError {
			switch entry.errorType {
			case ParseError:
				m.formatError(&parseErrorStyle, &entry, &s)
			case RuntimeError:
				m.formatError(&runtimeErrorStyle, &entry, &s)
			default:
				m.formatError(&errorStyle, &entry, &s)
			}
		} else {
			if m.options.NoColor {
				s.WriteString(entry.output)
			} else {
				s.WriteString(resultStyle.Render(entry.output))
			}
		}

		if entry.evaluationTime > 10*time.Millisecond {
			timeStr := fmt.Sprintf(" (%.2fs)", entry.evaluationTime.Seconds())
			s.WriteString(m.applyStyle(historyStyle, timeStr))
		}
		s.WriteString("\n")

		if (m.showDisasm || m.options.Debug) && entry.disasm != "" {
			s.WriteString(m.applyStyle(disasmStyle, entry.disasm))
		}
		s.WriteString("\n")
	}

	if m.evaluating {
		s.WriteString(m.applyStyle(promptStyle, Prompt))
		s.WriteString(m.highlightCode(m.currentInput))
		s.WriteString("\n")
		s.WriteString(m.spinner.View())
		s.WriteString(" Evaluating...")
		s.WriteString("\n\n")
	}

	if m.isMultiline && !m.evaluating {
		s.WriteString(m.applyStyle(historyStyle, "Current multiline input:\n"))
		s.WriteString(m.highlightCode(m.multilineBuffer))
		s.WriteString("\n")
	}

	if !m.evaluating {
		if m.isMultiline {
			m.textInput.Prompt = m.applyStyle(promptStyle, ContPrompt)
		} else {
			m.textInput.Prompt = m.applyStyle(promptStyle, Prompt)
		}
		s.WriteString(m.textInput.View())
		s.WriteString("\n")
	}

	helpText := "\nPress Esc or Ctrl+C/D to exit | Ctrl+B toggles bytecode disassembly"
	if m.isMultiline {
		helpText += " | Multiline mode: empty line evaluates"
	} else {
		helpText += " | Multiline input supported for unbalanced brackets"
	}
	s.WriteString(m.applyStyle(historyStyle, helpText))

	return s.String()
}

func formatParseErrors(errors []string) string {
	var s strings.Builder
	s.WriteString("Parse Errors:\n")
	for i, msg := range errors {
		fmt.Fprintf(&s, "  %d. %s\n", i+1, msg)
	}
	return s.String()
}

func formatRuntimeError(msg string) string {
	var s strings.Builder
	s.WriteString("Runtime Error:\n  ")
	s.WriteString(msg)
	s.WriteString("\n")
	return s.String()
}

// keywordTypes and operatorTypes drive highlightCode's token coloring.
var keywordTypes = map[token.Type]bool{
	token.Function: true, token.Var: true, token.True: true, token.False: true,
	token.Null: true, token.Undefined: true, token.If: true, token.Else: true,
	token.While: true, token.Do: true, token.For: true, token.Switch: true,
	token.Case: true, token.Default: true, token.Break: true, token.Continue: true,
	token.Return: true, token.New: true, token.This: true, token.Typeof: true,
	token.Void: true, token.Delete: true,
}

var operatorTypes = map[token.Type]bool{
	token.Assign: true, token.PlusAssign: true, token.MinusAssign: true,
	token.StarAssign: true, token.SlashAssign: true, token.PercentAssign: true,
	token.AndAssign: true, token.OrAssign: true, token.XorAssign: true,
	token.ShlAssign: true, token.ShrAssign: true, token.UShrAssign: true,
	token.Plus: true, token.Minus: true, token.Star: true, token.Slash: true,
	token.Percent: true, token.Pow: true, token.Inc: true, token.Dec: true,
	token.Bang: true, token.Eq: true, token.NotEq: true, token.StrictEq: true,
	token.StrictNotEq: true, token.Lt: true, token.Lte: true, token.Gt: true,
	token.Gte: true, token.And: true, token.Or: true, token.BitAnd: true,
	token.BitOr: true, token.Caret: true, token.Tilde: true, token.Shl: true,
	token.Shr: true, token.UShr: true, token.Question: true,
}

var delimiterTypes = map[token.Type]bool{
	token.Comma: true, token.Colon: true, token.Semicolon: true, token.Dot: true,
	token.Lparen: true, token.Rparen: true, token.Lbrace: true, token.Rbrace: true,
	token.Lbracket: true, token.Rbracket: true,
}

// highlightCode applies syntax highlighting to one line of source, token by
// token, writing the tokens separated by single spaces; the line's own
// spacing is not preserved.
func (m model) highlightCode(src string) string {
	var s strings.Builder
	l := lexer.New(src)
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		switch {
		case keywordTypes[tok.Type]:
			s.WriteString(m.applyStyle(keywordStyle, tok.Literal))
		case tok.Type == token.Ident:
			s.WriteString(m.applyStyle(identifierStyle, tok.Literal))
		case tok.Type == token.Number:
			s.WriteString(m.applyStyle(literalStyle, tok.Literal))
		case tok.Type == token.String:
			s.WriteString(m.applyStyle(stringStyle, "\""+tok.Literal+"\""))
		case operatorTypes[tok.Type]:
			s.WriteString(m.applyStyle(operatorStyle, tok.Literal))
		case delimiterTypes[tok.Type]:
			s.WriteString(m.applyStyle(delimiterStyle, tok.Literal))
		default:
			s.WriteString(tok.Literal)
		}
		s.WriteString(" ")
	}
	return strings.TrimRight(s.String(), " ")
}
