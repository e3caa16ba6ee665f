// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"iter"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/tabchat/internal/catalog"
	"github.com/jeranaias/tabchat/internal/model"
	"github.com/jeranaias/tabchat/internal/ui/styles"
	"github.com/jeranaias/tabchat/internal/util"
)

var roleTitle = cases.Title(language.English)

// modelTable renders the catalog with 1-based numbers.
func (c *Console) modelTable(models []catalog.Descriptor, current catalog.Descriptor) string {
	currentRow := -1
	rows := make([][]string, 0, len(models))
	for i, m := range models {
		if m.ID == current.ID {
			currentRow = i
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			m.ID,
			m.Developer,
			m.ContextWindowLabel(),
			m.MaxOutputLabel(),
		})
	}

	th := c.theme
	t := c.newTable().
		Headers("Number", "Model ID", "Developer", "Context Window", "Max Output Tokens").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return th.TableHeader
			case row == currentRow:
				return th.CurrentModel
			}
			return th.TableCell
		})
	return t.Render()
}

// historyTable renders turns with the role title-cased and each message
// flattened to one line and truncated to fit the terminal.
func (c *Console) historyTable(turns []model.Turn) string {
	roleWidth := util.StringWidth("Assistant")
	msgWidth := c.width - roleWidth - 7
	if msgWidth < 10 {
		msgWidth = 10
	}

	roles := make([]model.Role, 0, len(turns))
	rows := make([][]string, 0, len(turns))
	for _, turn := range turns {
		roles = append(roles, turn.Role)
		rows = append(rows, []string{
			roleTitle.String(string(turn.Role)),
			truncateCell(turn.Content, msgWidth),
		})
	}

	th := c.theme
	t := c.newTable().
		Headers("Role", "Message").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return th.TableHeader
			}
			if row >= 0 && row < len(roles) {
				if roles[row] == model.RoleUser {
					return th.UserRow
				}
				return th.AssistantRow
			}
			return th.TableCell
		})
	return t.Render()
}

// tabTable renders tab names in creation order with the active marker.
func (c *Console) tabTable(tabs iter.Seq2[string, bool]) string {
	activeRow := -1
	var rows [][]string
	for name, active := range tabs {
		mark := ""
		if active {
			mark = styles.StatusIndicators.Active
			activeRow = len(rows)
		}
		rows = append(rows, []string{truncateCell(name, c.width/2), mark})
	}

	th := c.theme
	t := c.newTable().
		Headers("Tab Name", "Active").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return th.TableHeader
			case row == activeRow:
				return th.ActiveMarker
			}
			return th.TableCell
		})
	return t.Render()
}

func (c *Console) newTable() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(c.theme.TableBorder)
}

// truncateCell flattens s to one line cut to width display columns.
func truncateCell(s string, width int) string {
	return util.TruncateWidth(util.SingleLine(s), width)
}
