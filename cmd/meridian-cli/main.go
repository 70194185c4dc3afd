// meridian-cli is a command-line client for interacting with a meridiand node.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/meridian-chain/meridian-ledger/internal/rpc"
	"github.com/meridian-chain/meridian-ledger/internal/rpcclient"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	rpcURL := "http://127.0.0.1:8560"
	caller := ""

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--caller" && len(args) > 1:
			caller = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--caller="):
			caller = args[0][len("--caller="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	client := rpcclient.New(rpcURL)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "status":
		cmdStatus(client)
	case "token":
		cmdToken(client, cmdArgs, caller)
	case "mint":
		cmdMint(client, cmdArgs, caller)
	case "burn":
		cmdBurn(client, cmdArgs, caller)
	case "burn-from":
		cmdBurnFrom(client, cmdArgs, caller)
	case "transfer":
		cmdTransfer(client, cmdArgs, caller)
	case "approve":
		cmdApprove(client, cmdArgs, caller)
	case "transfer-from":
		cmdTransferFrom(client, cmdArgs, caller)
	case "balance":
		cmdBalance(client, cmdArgs)
	case "balances":
		cmdBalances(client, cmdArgs)
	case "allowance":
		cmdAllowance(client, cmdArgs)
	case "controller":
		cmdController(client, cmdArgs, caller)
	case "tx":
		cmdTxShow(client, cmdArgs)
	case "txs":
		cmdTxList(client, cmdArgs)
	case "stats":
		cmdStats(client)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: meridian-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         RPC endpoint (default: http://127.0.0.1:8560)
  --caller <hex>      Caller principal for updates (hex)

Commands:
  status                          Show node status

  token list                      List all registered tokens
  token info <token_id>           Show token metadata
  token holders <token_id>        Show holder count
  token create --name <n> --symbol <SYM> [--decimals <d>] [--supply <n>]
               [--fee <n>] [--logo <url>] [--description <text>]
                                  Register a new token (controller only)
  token set-fee <token_id> <fee>  Change a token's transfer fee

  mint --token <id> --to <owner> --amount <n> [--to-sub <hex>] [--memo <hex>]
                                  Mint tokens (controller only)
  burn --token <id> --amount <n> [--memo <hex>]
                                  Burn the caller's tokens
  burn-from --token <id> --from <owner> --amount <n> [--from-sub <hex>]
                                  Burn from an account (controller only)

  transfer --token <id> --to <owner> --amount <n>
           [--from-sub <hex>] [--to-sub <hex>] [--fee <n>] [--memo <hex>]
                                  Transfer tokens
  approve --token <id> --spender <owner> --amount <n>
          [--expected <n>] [--expires-at <ns>] [--fee <n>]
                                  Approve a spender
  transfer-from --token <id> --from <owner> --to <owner> --amount <n>
                                  Spend an approval

  balance <token_id> <owner> [subaccount]
                                  Show an account balance
  balances <owner> [subaccount]   Show every holding of an account
  allowance <token_id> <owner> <spender>
                                  Show a live allowance

  controller list                 List controllers
  controller add <hex>            Add a controller
  controller remove <hex>         Remove a controller
  controller set <hex>            Set the primary controller

  tx <id>                         Show one log record
  txs [--token <id>] [--start <n>] [--limit <n>]
                                  Page through the transaction log
  stats                           Show storage statistics
`)
}

// requireCaller exits unless --caller was given.
func requireCaller(caller string) string {
	if caller == "" {
		fatal("this command needs --caller <hex principal>")
	}
	return caller
}

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(client *rpcclient.Client) {
	var health rpc.HealthResult
	if err := client.Call("health_check", nil, &health); err != nil {
		fatal("health_check: %v", err)
	}

	var info struct {
		Name       string `json:"name"`
		Version    string `json:"version"`
		Controller string `json:"controller"`
		TxCount    uint64 `json:"tx_count"`
	}
	if err := client.Call("get_info", nil, &info); err != nil {
		fatal("get_info: %v", err)
	}

	fmt.Printf("Status:      %s\n", health.Status)
	fmt.Printf("Engine:      %s v%s\n", info.Name, info.Version)
	fmt.Printf("Controller:  %s\n", info.Controller)
	fmt.Printf("Transactions: %d\n", info.TxCount)
}

// ── token ───────────────────────────────────────────────────────────────

func cmdToken(client *rpcclient.Client, args []string, caller string) {
	if len(args) < 1 {
		fatal("Usage: meridian-cli token <list|info|holders|create|set-fee> ...")
	}

	switch args[0] {
	case "list":
		var result rpc.TokenListResult
		if err := client.Call("list_tokens", nil, &result); err != nil {
			fatal("list_tokens: %v", err)
		}
		fmt.Printf("Tokens: %d\n", result.Count)
		for _, tok := range result.Tokens {
			fmt.Printf("  %s  %-8s %s (decimals %d, supply %s)\n",
				tok.TokenID, tok.Symbol, tok.Name, tok.Decimals, tok.TotalSupply)
		}

	case "info":
		if len(args) < 2 {
			fatal("Usage: meridian-cli token info <token_id>")
		}
		var tok rpc.TokenInfoResult
		if err := client.Call("get_token_metadata", rpc.TokenIDParam{TokenID: args[1]}, &tok); err != nil {
			fatal("get_token_metadata: %v", err)
		}
		fmt.Printf("Token:    %s\n", tok.TokenID)
		fmt.Printf("Name:     %s\n", tok.Name)
		fmt.Printf("Symbol:   %s\n", tok.Symbol)
		fmt.Printf("Decimals: %d\n", tok.Decimals)
		fmt.Printf("Supply:   %s\n", tok.TotalSupply)
		fmt.Printf("Fee:      %s\n", tok.Fee)
		if tok.Logo != nil {
			fmt.Printf("Logo:     %s\n", *tok.Logo)
		}
		if tok.Description != nil {
			fmt.Printf("About:    %s\n", *tok.Description)
		}
		fmt.Printf("Created:  %s\n", formatTime(tok.CreatedAt))

	case "holders":
		if len(args) < 2 {
			fatal("Usage: meridian-cli token holders <token_id>")
		}
		var result rpc.HolderCountResult
		if err := client.Call("get_holder_count", rpc.TokenIDParam{TokenID: args[1]}, &result); err != nil {
			fatal("get_holder_count: %v", err)
		}
		fmt.Printf("Holders: %d\n", result.Count)

	case "create":
		fs := flag.NewFlagSet("token create", flag.ExitOnError)
		name := fs.String("name", "", "Token name")
		symbol := fs.String("symbol", "", "Token symbol")
		decimals := fs.Uint("decimals", 8, "Token decimals (max 18)")
		supply := fs.String("supply", "", "Bootstrap supply credited to the caller")
		fee := fs.String("fee", "", "Transfer fee in base units")
		logo := fs.String("logo", "", "Logo URL")
		description := fs.String("description", "", "Token description")
		fs.Parse(args[1:])

		if *name == "" || *symbol == "" {
			fatal("Usage: meridian-cli token create --name <n> --symbol <SYM> [flags]")
		}
		param := rpc.CreateTokenParam{
			Caller:      requireCaller(caller),
			Name:        *name,
			Symbol:      *symbol,
			Decimals:    uint8(*decimals),
			TotalSupply: *supply,
			Fee:         *fee,
		}
		if *logo != "" {
			param.Logo = logo
		}
		if *description != "" {
			param.Description = description
		}

		var result rpc.CreateTokenResult
		if err := client.Call("create_token", param, &result); err != nil {
			fatal("create_token: %v", err)
		}
		fmt.Printf("Created: %s\n", result.TokenID)

	case "set-fee":
		if len(args) < 3 {
			fatal("Usage: meridian-cli token set-fee <token_id> <fee>")
		}
		param := rpc.SetTokenFeeParam{
			Caller:  requireCaller(caller),
			TokenID: args[1],
			Fee:     args[2],
		}
		if err := client.Call("set_token_fee", param, nil); err != nil {
			fatal("set_token_fee: %v", err)
		}
		fmt.Println("Fee updated")

	default:
		fatal("Unknown token command: %s", args[0])
	}
}

// ── mint / burn ─────────────────────────────────────────────────────────

func cmdMint(client *rpcclient.Client, args []string, caller string) {
	fs := flag.NewFlagSet("mint", flag.ExitOnError)
	token := fs.String("token", "", "Token id")
	to := fs.String("to", "", "Recipient principal (hex)")
	toSub := fs.String("to-sub", "", "Recipient subaccount (hex)")
	amount := fs.String("amount", "", "Amount in base units")
	memo := fs.String("memo", "", "Memo (hex, max 32 bytes)")
	fs.Parse(args)

	if *token == "" || *to == "" || *amount == "" {
		fatal("Usage: meridian-cli mint --token <id> --to <owner> --amount <n>")
	}

	var result rpc.TxIDResult
	err := client.Call("mint_tokens", rpc.MintParam{
		Caller:  requireCaller(caller),
		TokenID: *token,
		To:      rpc.AccountRef{Owner: *to, Subaccount: *toSub},
		Amount:  *amount,
		Memo:    *memo,
	}, &result)
	if err != nil {
		fatal("mint_tokens: %v", err)
	}
	fmt.Printf("Minted: tx %d\n", result.TxID)
}

func cmdBurn(client *rpcclient.Client, args []string, caller string) {
	fs := flag.NewFlagSet("burn", flag.ExitOnError)
	token := fs.String("token", "", "Token id")
	amount := fs.String("amount", "", "Amount in base units")
	memo := fs.String("memo", "", "Memo (hex, max 32 bytes)")
	fs.Parse(args)

	if *token == "" || *amount == "" {
		fatal("Usage: meridian-cli burn --token <id> --amount <n>")
	}

	var result rpc.TxIDResult
	err := client.Call("burn_tokens", rpc.BurnParam{
		Caller:  requireCaller(caller),
		TokenID: *token,
		Amount:  *amount,
		Memo:    *memo,
	}, &result)
	if err != nil {
		fatal("burn_tokens: %v", err)
	}
	fmt.Printf("Burned: tx %d\n", result.TxID)
}

func cmdBurnFrom(client *rpcclient.Client, args []string, caller string) {
	fs := flag.NewFlagSet("burn-from", flag.ExitOnError)
	token := fs.String("token", "", "Token id")
	from := fs.String("from", "", "Source principal (hex)")
	fromSub := fs.String("from-sub", "", "Source subaccount (hex)")
	amount := fs.String("amount", "", "Amount in base units")
	memo := fs.String("memo", "", "Memo (hex, max 32 bytes)")
	fs.Parse(args)

	if *token == "" || *from == "" || *amount == "" {
		fatal("Usage: meridian-cli burn-from --token <id> --from <owner> --amount <n>")
	}

	var result rpc.TxIDResult
	err := client.Call("burn_tokens_from", rpc.BurnFromParam{
		Caller:  requireCaller(caller),
		TokenID: *token,
		From:    rpc.AccountRef{Owner: *from, Subaccount: *fromSub},
		Amount:  *amount,
		Memo:    *memo,
	}, &result)
	if err != nil {
		fatal("burn_tokens_from: %v", err)
	}
	fmt.Printf("Burned: tx %d\n", result.TxID)
}

// ── transfer / approve / transfer-from ──────────────────────────────────

func cmdTransfer(client *rpcclient.Client, args []string, caller string) {
	fs := flag.NewFlagSet("transfer", flag.ExitOnError)
	token := fs.String("token", "", "Token id")
	fromSub := fs.String("from-sub", "", "Source subaccount (hex)")
	to := fs.String("to", "", "Recipient principal (hex)")
	toSub := fs.String("to-sub", "", "Recipient subaccount (hex)")
	amount := fs.String("amount", "", "Amount in base units")
	fee := fs.String("fee", "", "Expected fee (rejected on mismatch)")
	memo := fs.String("memo", "", "Memo (hex, max 32 bytes)")
	fs.Parse(args)

	if *token == "" || *to == "" || *amount == "" {
		fatal("Usage: meridian-cli transfer --token <id> --to <owner> --amount <n>")
	}

	createdAt := uint64(time.Now().UnixNano())
	var result rpc.TxIDResult
	err := client.Call("transfer", rpc.TransferParam{
		Caller:         requireCaller(caller),
		TokenID:        *token,
		FromSubaccount: *fromSub,
		To:             rpc.AccountRef{Owner: *to, Subaccount: *toSub},
		Amount:         *amount,
		Fee:            *fee,
		Memo:           *memo,
		CreatedAtTime:  &createdAt,
	}, &result)
	if err != nil {
		fatal("transfer: %v", err)
	}
	fmt.Printf("Submitted: tx %d\n", result.TxID)
}

func cmdApprove(client *rpcclient.Client, args []string, caller string) {
	fs := flag.NewFlagSet("approve", flag.ExitOnError)
	token := fs.String("token", "", "Token id")
	fromSub := fs.String("from-sub", "", "Owner subaccount (hex)")
	spender := fs.String("spender", "", "Spender principal (hex)")
	spenderSub := fs.String("spender-sub", "", "Spender subaccount (hex)")
	amount := fs.String("amount", "", "Allowance in base units")
	expected := fs.String("expected", "", "Expected current allowance (CAS)")
	expiresAt := fs.Uint64("expires-at", 0, "Expiry in ns since epoch (0 = never)")
	fee := fs.String("fee", "", "Expected fee (rejected on mismatch)")
	memo := fs.String("memo", "", "Memo (hex, max 32 bytes)")
	fs.Parse(args)

	if *token == "" || *spender == "" || *amount == "" {
		fatal("Usage: meridian-cli approve --token <id> --spender <owner> --amount <n>")
	}

	createdAt := uint64(time.Now().UnixNano())
	param := rpc.ApproveParam{
		Caller:         requireCaller(caller),
		TokenID:        *token,
		FromSubaccount: *fromSub,
		Spender:        rpc.AccountRef{Owner: *spender, Subaccount: *spenderSub},
		Amount:         *amount,
		Fee:            *fee,
		Memo:           *memo,
		CreatedAtTime:  &createdAt,
	}
	if *expected != "" {
		param.ExpectedAllowance = expected
	}
	if *expiresAt != 0 {
		param.ExpiresAt = expiresAt
	}

	var result rpc.TxIDResult
	if err := client.Call("approve", param, &result); err != nil {
		fatal("approve: %v", err)
	}
	fmt.Printf("Approved: tx %d\n", result.TxID)
}

func cmdTransferFrom(client *rpcclient.Client, args []string, caller string) {
	fs := flag.NewFlagSet("transfer-from", flag.ExitOnError)
	token := fs.String("token", "", "Token id")
	spenderSub := fs.String("spender-sub", "", "Spender subaccount (hex)")
	from := fs.String("from", "", "Source principal (hex)")
	fromSub := fs.String("from-sub", "", "Source subaccount (hex)")
	to := fs.String("to", "", "Recipient principal (hex)")
	toSub := fs.String("to-sub", "", "Recipient subaccount (hex)")
	amount := fs.String("amount", "", "Amount in base units")
	fee := fs.String("fee", "", "Expected fee (rejected on mismatch)")
	memo := fs.String("memo", "", "Memo (hex, max 32 bytes)")
	fs.Parse(args)

	if *token == "" || *from == "" || *to == "" || *amount == "" {
		fatal("Usage: meridian-cli transfer-from --token <id> --from <owner> --to <owner> --amount <n>")
	}

	createdAt := uint64(time.Now().UnixNano())
	var result rpc.TxIDResult
	err := client.Call("transfer_from", rpc.TransferFromParam{
		Caller:            requireCaller(caller),
		TokenID:           *token,
		SpenderSubaccount: *spenderSub,
		From:              rpc.AccountRef{Owner: *from, Subaccount: *fromSub},
		To:                rpc.AccountRef{Owner: *to, Subaccount: *toSub},
		Amount:            *amount,
		Fee:               *fee,
		Memo:              *memo,
		CreatedAtTime:     &createdAt,
	}, &result)
	if err != nil {
		fatal("transfer_from: %v", err)
	}
	fmt.Printf("Submitted: tx %d\n", result.TxID)
}

// ── queries ─────────────────────────────────────────────────────────────

func cmdBalance(client *rpcclient.Client, args []string) {
	if len(args) < 2 {
		fatal("Usage: meridian-cli balance <token_id> <owner> [subaccount]")
	}
	account := rpc.AccountRef{Owner: args[1]}
	if len(args) > 2 {
		account.Subaccount = args[2]
	}

	var result rpc.BalanceResult
	err := client.Call("get_balance", rpc.BalanceParam{
		TokenID: args[0],
		Account: account,
	}, &result)
	if err != nil {
		fatal("get_balance: %v", err)
	}
	fmt.Printf("Balance: %s\n", result.Amount)
}

func cmdBalances(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: meridian-cli balances <owner> [subaccount]")
	}
	account := rpc.AccountRef{Owner: args[0]}
	if len(args) > 1 {
		account.Subaccount = args[1]
	}

	var result rpc.BalancesForResult
	if err := client.Call("get_balances_for", rpc.AccountParam{Account: account}, &result); err != nil {
		fatal("get_balances_for: %v", err)
	}
	if len(result.Balances) == 0 {
		fmt.Println("No holdings")
		return
	}
	for _, b := range result.Balances {
		fmt.Printf("  %s  %s\n", b.TokenID, b.Balance)
	}
}

func cmdAllowance(client *rpcclient.Client, args []string) {
	if len(args) < 3 {
		fatal("Usage: meridian-cli allowance <token_id> <owner> <spender>")
	}

	var result rpc.AllowanceResult
	err := client.Call("get_allowance_details", rpc.AllowanceParam{
		TokenID: args[0],
		Owner:   rpc.AccountRef{Owner: args[1]},
		Spender: rpc.AccountRef{Owner: args[2]},
	}, &result)
	if err != nil {
		fatal("get_allowance_details: %v", err)
	}
	fmt.Printf("Allowance: %s\n", result.Allowance)
	if result.ExpiresAt != 0 {
		fmt.Printf("Expires:   %s\n", formatTime(result.ExpiresAt))
	}
}

// ── controller ──────────────────────────────────────────────────────────

func cmdController(client *rpcclient.Client, args []string, caller string) {
	if len(args) < 1 {
		fatal("Usage: meridian-cli controller <list|add|remove|set> [hex]")
	}

	switch args[0] {
	case "list":
		var result rpc.ControllerListResult
		if err := client.Call("list_controllers", nil, &result); err != nil {
			fatal("list_controllers: %v", err)
		}
		fmt.Printf("Controllers: %d\n", len(result.Controllers))
		for _, c := range result.Controllers {
			fmt.Printf("  %s\n", c)
		}

	case "add", "remove", "set":
		if len(args) < 2 {
			fatal("Usage: meridian-cli controller %s <hex>", args[0])
		}
		method := map[string]string{
			"add":    "add_controller",
			"remove": "remove_controller",
			"set":    "set_controller",
		}[args[0]]
		param := rpc.ControllerParam{
			Caller:     requireCaller(caller),
			Controller: args[1],
		}
		if err := client.Call(method, param, nil); err != nil {
			fatal("%s: %v", method, err)
		}
		fmt.Println("OK")

	default:
		fatal("Unknown controller command: %s", args[0])
	}
}

// ── transaction log ─────────────────────────────────────────────────────

func cmdTxShow(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: meridian-cli tx <id>")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fatal("invalid tx id: %v", err)
	}

	start, limit := id, uint64(1)
	var result rpc.TransactionsResult
	err = client.Call("get_transactions", rpc.TransactionsParam{
		Start: &start,
		Limit: &limit,
	}, &result)
	if err != nil {
		fatal("get_transactions: %v", err)
	}
	if result.Count == 0 {
		fatal("tx %d not found", id)
	}
	printTxRecord(result.Transactions[0])
}

func cmdTxList(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("txs", flag.ExitOnError)
	token := fs.String("token", "", "Filter by token id")
	start := fs.Uint64("start", 0, "First record id")
	limit := fs.Uint64("limit", 0, "Max records (default 100)")
	fs.Parse(args)

	param := rpc.TransactionsParam{TokenID: *token}
	if *start != 0 {
		param.Start = start
	}
	if *limit != 0 {
		param.Limit = limit
	}

	var result rpc.TransactionsResult
	if err := client.Call("get_transactions", param, &result); err != nil {
		fatal("get_transactions: %v", err)
	}

	var count rpc.TxCountResult
	if err := client.Call("get_transaction_count", nil, &count); err != nil {
		fatal("get_transaction_count: %v", err)
	}

	fmt.Printf("Showing %d of %d records\n", result.Count, count.Count)
	for _, rec := range result.Transactions {
		fmt.Printf("  [%d] %-13s %s  %s\n", rec.ID, rec.Op, rec.Amount, formatTime(rec.Timestamp))
	}
}

func printTxRecord(rec rpc.TxRecordResult) {
	fmt.Printf("ID:        %d\n", rec.ID)
	fmt.Printf("Op:        %s\n", rec.Op)
	fmt.Printf("Token:     %s\n", rec.TokenID)
	if rec.From != nil {
		fmt.Printf("From:      %s\n", formatAccount(*rec.From))
	}
	if rec.To != nil {
		fmt.Printf("To:        %s\n", formatAccount(*rec.To))
	}
	if rec.Spender != nil {
		fmt.Printf("Spender:   %s\n", formatAccount(*rec.Spender))
	}
	fmt.Printf("Amount:    %s\n", rec.Amount)
	fmt.Printf("Fee:       %s\n", rec.Fee)
	fmt.Printf("Timestamp: %s\n", formatTime(rec.Timestamp))
	if rec.Memo != "" {
		fmt.Printf("Memo:      %s\n", rec.Memo)
	}
}

// ── stats ───────────────────────────────────────────────────────────────

func cmdStats(client *rpcclient.Client) {
	var stats struct {
		TxCount            uint64 `json:"tx_count"`
		TokenCount         uint64 `json:"token_count"`
		HolderEntryCount   uint64 `json:"holder_entry_count"`
		AllowanceCount     uint64 `json:"allowance_count"`
		TransferDedupCount uint64 `json:"transfer_dedup_count"`
		ApproveDedupCount  uint64 `json:"approve_dedup_count"`
		ControllerCount    uint64 `json:"controller_count"`
		EstimatedBytes     uint64 `json:"estimated_bytes"`
	}
	if err := client.Call("get_storage_stats", nil, &stats); err != nil {
		fatal("get_storage_stats: %v", err)
	}

	fmt.Printf("Transactions:   %d\n", stats.TxCount)
	fmt.Printf("Tokens:         %d\n", stats.TokenCount)
	fmt.Printf("Holder entries: %d\n", stats.HolderEntryCount)
	fmt.Printf("Allowances:     %d\n", stats.AllowanceCount)
	fmt.Printf("Dedup entries:  %d transfer, %d approve\n",
		stats.TransferDedupCount, stats.ApproveDedupCount)
	fmt.Printf("Controllers:    %d\n", stats.ControllerCount)
	fmt.Printf("Estimated size: %s\n", formatBytes(stats.EstimatedBytes))
}

// ── helpers ─────────────────────────────────────────────────────────────

func formatAccount(a rpc.AccountRef) string {
	if a.Subaccount == "" {
		return a.Owner
	}
	return a.Owner + "." + a.Subaccount
}

// formatTime renders a ledger timestamp (ns since epoch) as UTC.
func formatTime(ns uint64) string {
	return time.Unix(0, int64(ns)).UTC().Format("2006-01-02 15:04:05 UTC")
}

func formatBytes(n uint64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.2f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.2f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.2f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
