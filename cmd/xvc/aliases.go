// Copyright 2025 KrakLabs
// SPDX-License-Identifier: Apache-2.0

package main

import "fmt"

// xvcAliases is reproduced verbatim from upstream xvc's
// core/src/aliases/mod.rs XVC_ALIASES constant: shell alias
// definitions for xvc's longer command names, meant to be sourced
// into ~/.zsh_aliases, ~/.bash_aliases, or ~/.profile.
const xvcAliases = `
alias xls='xvc file list'
alias pvc='xvc pipeline'
alias fvc='xvc file'
alias xvcf='xvc file'
alias xvcft='xvc file track'
alias xvcfl='xvc file list'
alias xvcfs='xvc file send'
alias xvcfb='xvc file bring'
alias xvcfh='xvc file hash'
alias xvcfc='xvc file checkout'
alias xvcp='xvc pipeline'
alias xvcpr='xvc pipeline run'
alias xvcps='xvc pipeline step'
alias xvcpsn='xvc pipeline step new'
alias xvcpsd='xvc pipeline step dependency'
alias xvcpso='xvc pipeline step output'
alias xvcpi='xvc pipeline import'
alias xvcpe='xvc pipeline export'
alias xvcpl='xvc pipeline list'
alias xvcpn='xvc pipeline new'
alias xvcpu='xvc pipeline update'
alias xvcpd='xvc pipeline dag'
alias xvcs='xvc storage'
alias xvcsn='xvc storage new'
alias xvcsl='xvc storage list'
alias xvcsr='xvc storage remove'
`

// runAliases executes the 'aliases' CLI command: it prints
// xvcAliases so it can be sourced with `$(xvc aliases)`.
func runAliases(args []string, globals GlobalFlags) {
	fmt.Print(xvcAliases)
}
