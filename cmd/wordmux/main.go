// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the wordmux suggestion server and its debug shell.

wordmux merges word suggestions from several sources: bundled language
packs, user dictionaries, an auto dictionary that learns from typing,
abbreviations, quick fixes and the user's contacts. Sources load in the
background; queries answer from whatever has finished loading.

# Usage

Start the MessagePack server on stdin/stdout:

	wordmux

Use a custom config file with debug logging on stderr:

	wordmux --config ./wordmux.toml -d

Run the interactive shell instead of the server:

	wordmux cli --limit 10

Manage the persistent sources without starting anything:

	wordmux abbrev add en brb "be right back"
	wordmux contacts add "Ada Lovelace" Ada
	wordmux packs

# Configuration

The config file is created with defaults when missing:

	[suggest]
	quick_fixes = true
	contacts = true
	min_word_usage = 1
	next_word_mode = "words_punctuation"
	max_next_words = 3
	auto_threshold = 3
	incognito = false

	[dict]
	packs_dir = "data"
	languages = ["en"]
	max_words = 50000
	store_path = ""
	contacts_file = ""
	load_workers = 4

Relative paths are resolved against the config file's directory. The
[suggest] section can also be changed at runtime with a "configure" request;
changes are written back to the file.

# IPC Protocol

Requests and responses are MessagePack maps, one per message:

	{"id": "1", "p": "hel", "l": 5}
	{"id": "1", "s": [{"w": "hello", "r": 1}], "c": 1, "t": 92}

	{"id": "2", "action": "next", "p": "good"}
	{"id": "3", "action": "learn", "p": "gopher"}
	{"id": "4", "action": "incognito", "on": true}
	{"id": "5", "action": "configure", "settings": {"auto_threshold": 5}}
	{"id": "6", "action": "reload"}

See package server for the full list of actions.
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bastiangx/wordmux/internal/logger"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordmux"
	gh      = "https://github.com/bastiangx/wordmux"
)

var (
	configFlag string
	packsFlag  string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:           AppName,
	Short:         "Multi-source word suggestion server",
	Long:          "wordmux merges word suggestions from language packs, user dictionaries, abbreviations and contacts, and serves them over MessagePack IPC.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugMode {
			logger.SetLevel(log.DebugLevel)
			log.SetReportTimestamp(true)
		} else {
			logger.SetLevel(log.WarnLevel)
		}
	},
	RunE: runServer,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to the config file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&packsFlag, "packs", "", "Directory holding language packs (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&debugMode, "debug", "d", false, "Toggle debug logging")
}

// main only wires the commands; each command owns its flow.
func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// onSignal runs cleanup and exits on SIGINT or SIGTERM.
func onSignal(cleanup func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		cleanup()
		os.Exit(0)
	}()
}
