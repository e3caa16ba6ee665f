// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// =============================================================================
// GENERAL COMMANDS
// =============================================================================

func (r *Registry) handleHelp(_ context.Context, c *Context, _ []string) (Outcome, error) {
	c.UI.Panel("Help", helpMarkdown("Available Commands", r.All()))
	return Continue, nil
}

func (r *Registry) handleTabs(_ context.Context, c *Context, _ []string) (Outcome, error) {
	c.UI.Panel("Tab Management", helpMarkdown("Tab Management Commands", r.ByCategory(CategoryTabs)))
	return Continue, nil
}

// helpMarkdown renders a command list as a markdown bullet list.
func helpMarkdown(heading string, cmds []*Command) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s:**\n\n", heading)
	for _, cmd := range cmds {
		fmt.Fprintf(&sb, "- `%s` - %s\n", cmd.Usage, cmd.Description)
	}
	return sb.String()
}

func handleClear(_ context.Context, c *Context, _ []string) (Outcome, error) {
	c.Session.ClearActive()
	c.UI.Notice(fmt.Sprintf("Conversation history cleared in tab '%s'.", c.Session.Active()))
	return Continue, nil
}

func handleHistory(_ context.Context, c *Context, _ []string) (Outcome, error) {
	tab := c.Session.Active()
	turns := c.Session.History()
	if len(turns) == 0 {
		c.UI.Notice(fmt.Sprintf("No conversation history in tab '%s'.", tab))
		return Continue, nil
	}
	c.UI.ShowHistory(tab, turns)
	return Continue, nil
}

func handleExit(_ context.Context, c *Context, _ []string) (Outcome, error) {
	question := "Are you sure you want to exit?"
	if dirty := c.Session.DirtyTabs(); len(dirty) > 0 {
		question = fmt.Sprintf("Unsaved tabs: %s. Are you sure you want to exit?", strings.Join(dirty, ", "))
	}

	ok, err := c.Prompt.Confirm(question)
	if err != nil {
		return Continue, err
	}
	if ok {
		return Exit, nil
	}
	return Continue, nil
}

// =============================================================================
// PERSISTENCE COMMANDS
// =============================================================================

func handleSave(ctx context.Context, c *Context, args []string) (Outcome, error) {
	var name string
	if len(args) > 0 {
		name = args[0]
	}

	tab := c.Session.Active()
	turns := c.Session.History()
	path, err := c.Store.Save(tab, turns, name)
	if err != nil {
		return Continue, err
	}
	c.Session.MarkClean(tab)

	if c.Journal != nil {
		if _, err := c.Journal.Record(ctx, path, tab, len(turns), c.Session.Model().ID); err != nil {
			c.logger().Warn("failed to journal save", zap.String("path", path), zap.Error(err))
		}
	}

	c.logger().Info("conversation saved",
		zap.String("tab", tab),
		zap.String("path", path),
		zap.Int("turns", len(turns)))
	c.UI.Success(fmt.Sprintf("Conversation saved to %s", path))
	return Continue, nil
}

func handleLoad(_ context.Context, c *Context, args []string) (Outcome, error) {
	turns, err := c.Store.Load(args[0])
	if err != nil {
		return Continue, err
	}
	c.Session.ReplaceActive(turns)

	path := c.Store.Resolve(args[0])
	c.logger().Info("conversation loaded",
		zap.String("tab", c.Session.Active()),
		zap.String("path", path),
		zap.Int("turns", len(turns)))
	c.UI.Success(fmt.Sprintf("Conversation loaded from %s", path))
	return Continue, nil
}

// =============================================================================
// MODEL COMMANDS
// =============================================================================

func handleModel(_ context.Context, c *Context, _ []string) (Outcome, error) {
	c.UI.ShowModels(c.Catalog.All(), c.Session.Model())

	choice, err := c.Prompt.Ask("Select model number")
	if err != nil {
		return Continue, err
	}
	d, err := c.Catalog.SelectString(strings.TrimSpace(choice))
	if err != nil {
		return Continue, err
	}

	c.Session.SetModel(d)
	c.logger().Info("model switched", zap.String("model", d.ID))
	c.UI.Success(fmt.Sprintf("Switched to model: %s", d.ID))
	return Continue, nil
}

// =============================================================================
// TAB COMMANDS
// =============================================================================

func handleNewTab(_ context.Context, c *Context, args []string) (Outcome, error) {
	name := args[0]
	if err := c.Session.CreateTab(name); err != nil {
		return Continue, err
	}
	c.UI.Success(fmt.Sprintf("New tab '%s' created.", name))
	return Continue, nil
}

func handleCloseTab(_ context.Context, c *Context, args []string) (Outcome, error) {
	name := args[0]
	switched, err := c.Session.CloseTab(name)
	if err != nil {
		return Continue, err
	}
	c.UI.Success(fmt.Sprintf("Tab '%s' closed.", name))
	if switched {
		c.UI.Notice(fmt.Sprintf("Switched to tab '%s'.", c.Session.Active()))
	}
	return Continue, nil
}

func handleListTabs(_ context.Context, c *Context, _ []string) (Outcome, error) {
	c.UI.ShowTabs(c.Session.ListTabs())
	return Continue, nil
}

func handleSwitch(_ context.Context, c *Context, args []string) (Outcome, error) {
	name := args[0]
	if err := c.Session.SwitchTab(name); err != nil {
		return Continue, err
	}
	c.UI.Success(fmt.Sprintf("Switched to tab '%s'.", name))
	return Continue, nil
}
