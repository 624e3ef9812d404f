// Copyright (C) 2025 Weidmueller Interface GmbH & Co. KG
// All rights reserved. This file is part of u-os-hub-client-go.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hublog provides leveled logging for the hub client library.
//
// Time/date are intentionally not logged: systemd (and most process
// supervisors used alongside u-OS) add them for us. Messages are tagged
// with systemd's syslog priority prefixes so journald can filter by
// level without parsing timestamps.
// https://www.freedesktop.org/software/systemd/man/sd-daemon.html
package hublog

import (
	"fmt"
	"io"
	"os"
)

var (
	DebugWriter io.Writer = os.Stderr
	InfoWriter  io.Writer = os.Stderr
	WarnWriter  io.Writer = os.Stderr
	ErrorWriter io.Writer = os.Stderr
)

var (
	DebugPrefix string = "<7>[hub][DEBUG]"
	InfoPrefix  string = "<6>[hub][INFO]"
	WarnPrefix  string = "<4>[hub][WARNING]"
	ErrPrefix   string = "<3>[hub][ERROR]"
)

func init() {
	if lvl, ok := os.LookupEnv("U_OS_HUB_LOGLEVEL"); ok {
		SetLevel(lvl)
	}
}

// SetLevel discards output below the given level ("debug", "info", "warn", "err").
func SetLevel(lvl string) {
	switch lvl {
	case "err", "fatal":
		WarnWriter = io.Discard
		fallthrough
	case "warn":
		InfoWriter = io.Discard
		fallthrough
	case "info":
		DebugWriter = io.Discard
	case "debug":
		// nothing discarded
	default:
		Warnf("hublog: unknown log level %q, ignoring", lvl)
	}
}

func Debugf(format string, v ...interface{}) {
	if DebugWriter != io.Discard {
		fmt.Fprintf(DebugWriter, DebugPrefix+" "+format+"\n", v...)
	}
}

func Infof(format string, v ...interface{}) {
	if InfoWriter != io.Discard {
		fmt.Fprintf(InfoWriter, InfoPrefix+" "+format+"\n", v...)
	}
}

func Warnf(format string, v ...interface{}) {
	if WarnWriter != io.Discard {
		fmt.Fprintf(WarnWriter, WarnPrefix+" "+format+"\n", v...)
	}
}

func Errorf(format string, v ...interface{}) {
	if ErrorWriter != io.Discard {
		fmt.Fprintf(ErrorWriter, ErrPrefix+" "+format+"\n", v...)
	}
}
