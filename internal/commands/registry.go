// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"iter"

	"go.uber.org/zap"

	"github.com/jeranaias/tabchat/internal/catalog"
	"github.com/jeranaias/tabchat/internal/model"
	"github.com/jeranaias/tabchat/internal/session"
	"github.com/jeranaias/tabchat/internal/storage"
)

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome tells the REPL whether to keep reading input.
type Outcome int

const (
	// Continue keeps the loop running.
	Continue Outcome = iota
	// Exit terminates the loop.
	Exit
)

func (o Outcome) String() string {
	if o == Exit {
		return "exit"
	}
	return "continue"
}

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// HandlerFunc executes a command after its arguments have been validated.
type HandlerFunc func(ctx context.Context, c *Context, args []string) (Outcome, error)

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the command name including the marker (e.g., "/help")
	Name string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/load <filename>")
	Usage string

	// Args defines the expected positional arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler HandlerFunc

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description completes "please specify ..." when the argument is missing
	Description string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString ArgType = iota // Free-form string
	ArgTypeTab                   // Existing tab name
	ArgTypeFile                  // Conversation file
)

// Help categories.
const (
	CategoryGeneral = "General"
	CategoryTabs    = "Tabs"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Presenter renders command output. Implementations own all formatting.
type Presenter interface {
	Success(msg string)
	Notice(msg string)
	Error(err error)
	Panel(title, markdown string)
	ShowModels(models []catalog.Descriptor, current catalog.Descriptor)
	ShowHistory(tab string, turns []model.Turn)
	ShowTabs(tabs iter.Seq2[string, bool])
}

// Prompter asks the user for input in the middle of a command.
type Prompter interface {
	Confirm(question string) (bool, error)
	Ask(question string) (string, error)
}

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides the state and collaborators command handlers act on.
// Handlers perform no terminal I/O themselves.
type Context struct {
	// Session holds the tabs and the selected model
	Session *session.Manager

	// Catalog lists selectable models
	Catalog *catalog.Registry

	// Store reads and writes conversation files
	Store *storage.ConversationStore

	// Journal records saves; optional
	Journal *storage.Journal

	UI     Presenter
	Prompt Prompter
	Logger *zap.Logger
}

func (c *Context) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands in registration order.
type Registry struct {
	commands map[string]*Command
	order    []*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := NewEmptyRegistry()
	r.registerBuiltins()
	return r
}

// NewEmptyRegistry creates a registry with no commands.
func NewEmptyRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register adds a command to the registry, replacing any command with the
// same name in place.
func (r *Registry) Register(cmd *Command) {
	if old, ok := r.commands[cmd.Name]; ok {
		for i, c := range r.order {
			if c == old {
				r.order[i] = cmd
			}
		}
	} else {
		r.order = append(r.order, cmd)
	}
	r.commands[cmd.Name] = cmd
}

// Get retrieves a command by name. Names are case-sensitive.
func (r *Registry) Get(name string) *Command {
	return r.commands[name]
}

// All returns all registered commands in registration order.
func (r *Registry) All() []*Command {
	out := make([]*Command, len(r.order))
	copy(out, r.order)
	return out
}

// Names returns all command names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	for i, c := range r.order {
		names[i] = c.Name
	}
	return names
}

// ByCategory returns the commands of one category in registration order.
func (r *Registry) ByCategory(category string) []*Command {
	var out []*Command
	for _, c := range r.order {
		if c.Category == category {
			out = append(out, c)
		}
	}
	return out
}

// Execute parses line and runs the matching command.
// Unknown names yield *UnknownCommandError and missing required arguments
// yield *UsageError; in both cases no handler runs and no state changes.
func (r *Registry) Execute(ctx context.Context, c *Context, line string) (Outcome, error) {
	result := NewParser(r).Parse(line)
	if !result.IsCommand {
		return Continue, nil
	}
	if result.Command == nil {
		c.logger().Debug("unknown command", zap.String("name", result.CommandName))
		return Continue, &UnknownCommandError{Name: result.CommandName}
	}
	if err := ValidateArgs(result.Command, result.Args); err != nil {
		return Continue, err
	}

	c.logger().Debug("executing command",
		zap.String("name", result.Command.Name),
		zap.Int("args", len(result.Args)))
	return result.Command.Handler(ctx, c, result.Args)
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Description: "Show this help message",
		Usage:       "/help",
		Category:    CategoryGeneral,
		Handler:     r.handleHelp,
	})

	r.Register(&Command{
		Name:        "/clear",
		Description: "Clear the conversation history of the current tab",
		Usage:       "/clear",
		Category:    CategoryGeneral,
		Handler:     handleClear,
	})

	r.Register(&Command{
		Name:        "/save",
		Description: "Save current conversation to a file",
		Usage:       "/save [filename]",
		Args: []ArgDef{
			{Name: "filename", Required: false, Type: ArgTypeFile, Description: "a filename to save to"},
		},
		Category: CategoryGeneral,
		Handler:  handleSave,
	})

	r.Register(&Command{
		Name:        "/load",
		Description: "Load conversation from a file into the current tab",
		Usage:       "/load <filename>",
		Args: []ArgDef{
			{Name: "filename", Required: true, Type: ArgTypeFile, Description: "a filename to load"},
		},
		Category: CategoryGeneral,
		Handler:  handleLoad,
	})

	r.Register(&Command{
		Name:        "/model",
		Description: "Switch between available models",
		Usage:       "/model",
		Category:    CategoryGeneral,
		Handler:     handleModel,
	})

	r.Register(&Command{
		Name:        "/exit",
		Description: "Exit the application",
		Usage:       "/exit",
		Category:    CategoryGeneral,
		Handler:     handleExit,
	})

	r.Register(&Command{
		Name:        "/history",
		Description: "Show conversation history of the current tab",
		Usage:       "/history",
		Category:    CategoryGeneral,
		Handler:     handleHistory,
	})

	r.Register(&Command{
		Name:        "/tabs",
		Description: "Manage conversation tabs",
		Usage:       "/tabs",
		Category:    CategoryGeneral,
		Handler:     r.handleTabs,
	})

	r.Register(&Command{
		Name:        "/newtab",
		Description: "Create a new conversation tab",
		Usage:       "/newtab <tab_name>",
		Args: []ArgDef{
			{Name: "tab_name", Required: true, Type: ArgTypeString, Description: "a name for the new tab"},
		},
		Category: CategoryTabs,
		Handler:  handleNewTab,
	})

	r.Register(&Command{
		Name:        "/closetab",
		Description: "Close an existing conversation tab",
		Usage:       "/closetab <tab_name>",
		Args: []ArgDef{
			{Name: "tab_name", Required: true, Type: ArgTypeTab, Description: "the name of the tab to close"},
		},
		Category: CategoryTabs,
		Handler:  handleCloseTab,
	})

	r.Register(&Command{
		Name:        "/listtabs",
		Description: "List all active conversation tabs",
		Usage:       "/listtabs",
		Category:    CategoryTabs,
		Handler:     handleListTabs,
	})

	r.Register(&Command{
		Name:        "/switch",
		Description: "Switch to a different conversation tab",
		Usage:       "/switch <tab_name>",
		Args: []ArgDef{
			{Name: "tab_name", Required: true, Type: ArgTypeTab, Description: "the name of the tab to switch to"},
		},
		Category: CategoryTabs,
		Handler:  handleSwitch,
	})
}
