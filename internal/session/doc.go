// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the conversation tabs of one interactive session.
//
// A session is a single explicit value, created by the REPL and passed by
// pointer to the command handlers and the conversation engine. Nothing in
// this package is global.
//
// # Key Types
//
//   - Manager: Tabs, tab order, active tab and selected model
//   - TabError: Failed tab operation, unwraps to a sentinel error
//   - Status: Snapshot used by the welcome banner and exit prompt
//
// # Tabs
//
// The "default" tab always exists and cannot be closed. Other tabs are
// created with CreateTab and listed in creation order. Closing the active
// tab makes the first remaining tab active:
//
//	sess := session.NewManager(reg.Default())
//	_ = sess.CreateTab("work")
//	_ = sess.SwitchTab("work")
//	for name, active := range sess.ListTabs() {
//	    fmt.Println(name, active)
//	}
package session
