package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/atinyakov/NovaBank/internal/client/accounts"
	"github.com/atinyakov/NovaBank/internal/client/api"
	"github.com/atinyakov/NovaBank/internal/client/credstore"
	"github.com/atinyakov/NovaBank/internal/client/nav"
	"github.com/atinyakov/NovaBank/internal/client/session"
	"github.com/atinyakov/NovaBank/internal/client/submit"
	"github.com/atinyakov/NovaBank/internal/models"
)

var (
	version   string
	buildDate string
)

// bank bundles the client components the shell commands work with.
type bank struct {
	api       *api.Client
	auth      *session.Authority
	catalog   *accounts.Catalog
	submitter *submit.Submitter
	scanner   *bufio.Scanner
}

func (b *bank) prompt(label string) string {
	fmt.Printf("%s: ", label)
	if !b.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(b.scanner.Text())
}

// enter runs the route guard for a screen and reports whether the command
// may proceed. A denial prints where the user was sent instead.
func (b *bank) enter(route string) bool {
	decision := nav.Admit(b.auth.Current(), route)
	if decision.Allow {
		return true
	}
	switch decision.RedirectTo {
	case nav.RouteLogin:
		fmt.Println("Please log in first")
	case nav.RouteAdmin:
		fmt.Println("Admins use the admin view; try 'admin'")
	case nav.RouteDashboard:
		fmt.Println("This view is for admins; try 'dashboard'")
	}
	return false
}

func (b *bank) login(ctx context.Context) {
	email := b.prompt("Email")
	password := b.prompt("Password")

	resp, err := b.api.Login(ctx, email, password)
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			fmt.Println(apiErr.Message)
		} else {
			fmt.Println("Could not reach the bank, please try again")
		}
		return
	}

	s, err := b.auth.Establish(resp.Token, &resp.Client)
	if err != nil {
		fmt.Println("Received an unusable credential from the server")
		return
	}
	fmt.Printf("Welcome, %s. You are at %s\n", resp.Client.FullName, nav.LandingRoute(s))
}

func (b *bank) register(ctx context.Context) {
	req := models.RegisterRequest{
		FullName:    b.prompt("Full name"),
		Email:       b.prompt("Email"),
		PhoneNumber: b.prompt("Phone number"),
		CIP:         b.prompt("CIP"),
		Password:    b.prompt("Password"),
	}

	if err := b.api.Register(ctx, req); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			fmt.Println(apiErr.Message)
		} else {
			fmt.Println("Could not reach the bank, please try again")
		}
		return
	}
	fmt.Println("Registered. You can now log in.")
}

func (b *bank) whoami() {
	s := b.auth.Current()
	if s.State != session.StateAuthenticated {
		fmt.Println("Not logged in")
		return
	}
	role := "client"
	if s.Claims.IsPrivileged {
		role = "admin"
	}
	fmt.Printf("%s <%s> (%s), session expires %s\n",
		s.Claims.FullName, s.Claims.Email, role, s.Claims.ExpiresAt.Format("15:04:05"))
}

func (b *bank) dashboard(ctx context.Context) {
	if !b.enter(nav.RouteDashboard) {
		return
	}
	snapshot, err := b.catalog.Refresh(ctx)
	if err != nil {
		printCatalogError(err)
		return
	}

	fmt.Printf("Client: %s\n", snapshot.Client.FullName)
	fmt.Println("Accounts:")
	for _, account := range snapshot.Accounts {
		fmt.Printf("  [%d] %s (%s) balance %s\n",
			account.ID, account.AccountNumber, account.AccountType, account.Balance.StringFixed(2))
	}
	if len(snapshot.Cards) > 0 {
		fmt.Println("Cards:")
		for _, card := range snapshot.Cards {
			fmt.Printf("  %s expires %s\n", card.CardNumber, card.ExpirationDate)
		}
	}
}

func (b *bank) admin(ctx context.Context) {
	if !b.enter(nav.RouteAdmin) {
		return
	}
	token, ok := b.auth.BearerToken()
	if !ok {
		fmt.Println("Please log in first")
		return
	}

	listing, err := b.api.AdminAccounts(ctx, token)
	if err != nil {
		b.printProtectedError(err)
		return
	}

	fmt.Println("All accounts:")
	for _, account := range listing {
		fmt.Printf("  [%d] %s %s owned by %s, balance %s\n",
			account.ID, account.AccountNumber, account.AccountType,
			account.ClientFullName, account.Balance.StringFixed(2))
	}
}

func (b *bank) history(ctx context.Context) {
	if !b.enter(nav.RouteHistory) {
		return
	}
	token, ok := b.auth.BearerToken()
	if !ok {
		fmt.Println("Please log in first")
		return
	}

	raw := b.prompt("Account id")
	accountID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		fmt.Println("Account id must be a number")
		return
	}

	entries, err := b.api.History(ctx, token, accountID)
	if err != nil {
		b.printProtectedError(err)
		return
	}
	if len(entries) == 0 {
		fmt.Println("No transactions yet")
		return
	}

	fmt.Println("Transactions:")
	for _, e := range entries {
		fmt.Printf("  [%d] %s %s %s on %s\n",
			e.ID, e.Type, e.Amount.StringFixed(2), e.Description,
			e.CreatedAt.Format("2006-01-02 15:04"))
	}
}

// printProtectedError reports a failed protected call, tearing down the
// session when the credential was rejected.
func (b *bank) printProtectedError(err error) {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr) && apiErr.IsAuth():
		b.auth.Invalidate()
		fmt.Println("Session expired, please log in again")
	case errors.As(err, &apiErr):
		fmt.Println(apiErr.Message)
	default:
		fmt.Println("Could not reach the bank, please try again")
	}
}

func (b *bank) transfer(ctx context.Context) {
	if !b.enter(nav.RouteTransfer) {
		return
	}
	form := submit.TransferForm{
		SenderAccountID:       b.prompt("Sender account id"),
		ReceiverAccountNumber: b.prompt("Receiver account number"),
		ReceiverName:          b.prompt("Receiver name"),
		ReceiverBank:          b.prompt("Receiver bank"),
		Amount:                b.prompt("Amount"),
		Description:           b.prompt("Description"),
	}

	b.report(b.submitter.Transfer(ctx, form))
}

func (b *bank) payment(ctx context.Context) {
	if !b.enter(nav.RoutePayment) {
		return
	}
	form := submit.PaymentForm{
		SenderAccountID:   b.prompt("Sender account id"),
		PaymentEntityName: b.prompt("Payee"),
		Amount:            b.prompt("Amount"),
		ReferenceNumber:   b.prompt("Reference number"),
		Description:       b.prompt("Description"),
	}

	b.report(b.submitter.Payment(ctx, form))
}

// report prints a submission outcome and refreshes balances on success.
func (b *bank) report(outcome submit.Outcome) {
	fmt.Println(outcome.Message)
	if outcome.OK {
		if _, err := b.catalog.Refresh(context.Background()); err != nil {
			fmt.Println("Note: balances may be stale, reopen the dashboard")
		}
	}
}

func printCatalogError(err error) {
	switch err {
	case accounts.ErrUnauthorized:
		fmt.Println("Session expired, please log in again")
	case accounts.ErrMalformed:
		fmt.Println("The bank sent an unreadable response, please try again")
	default:
		fmt.Println("Could not reach the bank, please try again")
	}
}

// repl runs the interactive shell loop.
func (b *bank) repl() {
	for {
		fmt.Print("novabank> ")
		if !b.scanner.Scan() {
			break
		}
		line := strings.TrimSpace(b.scanner.Text())
		if line == "" {
			continue
		}
		ctx := context.Background()

		switch line {
		case "help":
			fmt.Println("Available commands: help, register, login, logout, whoami, dashboard, admin, transfer, payment, history, exit")
		case "register":
			b.register(ctx)
		case "login":
			b.login(ctx)
		case "logout":
			b.auth.Invalidate()
			fmt.Println("Logged out")
		case "whoami":
			b.whoami()
		case "dashboard":
			b.dashboard(ctx)
		case "admin":
			b.admin(ctx)
		case "transfer":
			b.transfer(ctx)
		case "payment":
			b.payment(ctx)
		case "history":
			b.history(ctx)
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

func main() {
	var (
		baseURL   string
		credsPath string
		showVer   bool
	)

	home, _ := os.UserHomeDir()
	defaultCreds := filepath.Join(home, ".novabank", "credentials.json")

	flag.StringVar(&baseURL, "url", "http://localhost:5000", "server base URL")
	flag.StringVar(&credsPath, "creds", defaultCreds, "path to the credential file")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("NovaBank Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	if err := os.MkdirAll(filepath.Dir(credsPath), 0o700); err != nil {
		log.Fatal(err)
	}

	logger := zap.NewNop()
	store := credstore.New(credsPath)
	auth := session.NewAuthority(store, logger)
	apiClient := api.New(baseURL, nil)
	catalog := accounts.NewCatalog(apiClient, auth, logger)
	submitter := submit.NewSubmitter(apiClient, auth, catalog, logger)

	b := &bank{
		api:       apiClient,
		auth:      auth,
		catalog:   catalog,
		submitter: submitter,
		scanner:   bufio.NewScanner(os.Stdin),
	}

	s := auth.Bootstrap()
	if s.State == session.StateAuthenticated {
		fmt.Printf("Welcome back, %s. Start at %s\n", s.Claims.FullName, nav.LandingRoute(s))
	} else {
		fmt.Println("Welcome to NovaBank. Type 'help' for a list of commands.")
	}

	b.repl()
}
