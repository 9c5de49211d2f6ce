package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"marketplace/internal/client"
	"marketplace/internal/dashboard"
	"marketplace/internal/format"
	"marketplace/internal/models"
	"marketplace/internal/service"
	"marketplace/internal/wallet"

	"github.com/shopspring/decimal"
)

// commandError is a failure whose messages were already printed.
type commandError struct {
	err error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }

type command struct {
	name  string
	usage string
	run   func(a *app, ctx context.Context, args []string) error
}

func commandTable() []command {
	return []command{
		{"register", "register --name --email --nif --phone --password --confirm --type customer|provider", (*app).cmdRegister},
		{"login", "login <email> [password]  (or MARKETPLACE_PASSWORD)", (*app).cmdLogin},
		{"logout", "logout", (*app).cmdLogout},
		{"whoami", "whoami", (*app).cmdWhoami},
		{"services", "services [--search text] [--category CAT|all] [--sort asc|desc]", (*app).cmdServices},
		{"service", "service [--date YYYY-MM-DD] <id>", (*app).cmdService},
		{"my-services", "my-services", (*app).cmdMyServices},
		{"service-create", "service-create --name --category --duration --price [--description]", (*app).cmdServiceCreate},
		{"service-update", "service-update [--name --category --duration --price --description] <id>", (*app).cmdServiceUpdate},
		{"service-toggle", "service-toggle <id>", (*app).cmdServiceToggle},
		{"service-delete", "service-delete <id>", (*app).cmdServiceDelete},
		{"book", "book <serviceId> <YYYY-MM-DD> <HH:MM>", (*app).cmdBook},
		{"bookings", "bookings [--tab all|pendente|confirmada|cancelada|concluida] [--status S] [--date D] [--service ID] [--page N] [--limit N]", (*app).cmdBookings},
		{"booking", "booking <id>", (*app).cmdBooking},
		{"confirm", "confirm <id>", (*app).cmdConfirm},
		{"cancel", "cancel <id> <reason...>", (*app).cmdCancel},
		{"balance", "balance", (*app).cmdBalance},
		{"transactions", "transactions [--tab all|credito|debito] [--type T] [--page N] [--limit N]", (*app).cmdTransactions},
		{"deposit", "deposit <amount> [description...]", (*app).cmdDeposit},
		{"dashboard", "dashboard", (*app).cmdDashboard},
		{"export", "export [--tab T]", (*app).cmdExport},
		{"watch", "watch [--interval 30s] [--tab T]", (*app).cmdWatch},
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: marketplace <command> [flags] [args]")
	fmt.Fprintln(w)
	for _, c := range commandTable() {
		fmt.Fprintf(w, "  %s\n", c.usage)
	}
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	for _, c := range commandTable() {
		if c.name == args[0] {
			return c.run(a, ctx, args[1:])
		}
	}
	printUsage(a.errOut)
	return fmt.Errorf("unknown command %q", args[0])
}

// fail prints the user messages for err and drops the session on a 401.
func (a *app) fail(ctx context.Context, err error, fallback string) error {
	if a.auth.Expire(ctx, err) {
		fmt.Fprintln(a.errOut, client.MsgSessionExpired)
		return &commandError{err: err}
	}
	for _, msg := range service.UserMessage(err, fallback) {
		fmt.Fprintln(a.errOut, "erro:", msg)
	}
	a.logger.Debug().Err(err).Msg("command failed")
	return &commandError{err: err}
}

func (a *app) session(ctx context.Context) (*models.Session, error) {
	s, err := a.auth.Current(ctx)
	if err != nil {
		return nil, a.fail(ctx, err, "")
	}
	return s, nil
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func needArgs(fs *flag.FlagSet, n int, usage string) error {
	if fs.NArg() < n {
		return fmt.Errorf("usage: marketplace %s", usage)
	}
	return nil
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := newFlags("register")
	var req models.RegisterRequest
	var role string
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email")
	fs.StringVar(&req.NIF, "nif", "", "9-digit NIF")
	fs.StringVar(&req.Phone, "phone", "", "9-digit phone")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&req.ConfirmPassword, "confirm", "", "password confirmation")
	fs.StringVar(&role, "type", "customer", "customer or provider")
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, err := models.ParseRole(role)
	if err != nil {
		return err
	}
	req.Type = r

	user, err := a.auth.Register(ctx, req)
	if err != nil {
		return a.fail(ctx, err, "Erro ao criar conta")
	}
	fmt.Fprintf(a.out, "Conta criada para %s (%s). Faça login para continuar.\n", user.Name, roleLabel(user.Type))
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := newFlags("login")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := needArgs(fs, 1, "login <email> [password]"); err != nil {
		return err
	}

	password := fs.Arg(1)
	if password == "" {
		password = os.Getenv("MARKETPLACE_PASSWORD")
	}

	session, err := a.auth.Login(ctx, fs.Arg(0), password)
	if err != nil {
		return a.fail(ctx, err, client.MsgLogin)
	}
	fmt.Fprintf(a.out, "Bem-vindo, %s (%s)\n", session.User.Name, roleLabel(session.Role()))
	return nil
}

func (a *app) cmdLogout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return a.fail(ctx, err, "")
	}
	fmt.Fprintln(a.out, "Sessão terminada")
	return nil
}

func (a *app) cmdWhoami(ctx context.Context, _ []string) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	user, err := a.auth.Me(ctx, session)
	if err != nil {
		return a.fail(ctx, err, "")
	}
	printUser(a.out, user)
	return nil
}

func (a *app) cmdServices(ctx context.Context, args []string) error {
	fs := newFlags("services")
	var f dashboard.ServiceFilter
	var category, order string
	fs.StringVar(&f.Search, "search", "", "search in name and description")
	fs.StringVar(&category, "category", "all", "category or all")
	fs.StringVar(&order, "sort", "", "price order: asc or desc")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f.Category = models.ServiceCategory(strings.ToUpper(category))
	if strings.EqualFold(category, "all") {
		f.Category = "all"
	} else if !f.Category.Valid() {
		return fmt.Errorf("unknown category %q", category)
	}
	switch dashboard.PriceOrder(strings.ToLower(order)) {
	case dashboard.PriceNone, dashboard.PriceAsc, dashboard.PriceDesc:
		f.Order = dashboard.PriceOrder(strings.ToLower(order))
	default:
		return fmt.Errorf("unknown sort %q", order)
	}

	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	services, err := a.catalog.Browse(ctx, session, f)
	if err != nil {
		return a.fail(ctx, err, client.MsgLoadServices)
	}
	printServices(a.out, services)
	return nil
}

func (a *app) cmdService(ctx context.Context, args []string) error {
	fs := newFlags("service")
	date := fs.String("date", "", "show free start times on this date")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := needArgs(fs, 1, "service [--date YYYY-MM-DD] <id>"); err != nil {
		return err
	}

	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	svc, err := a.catalog.Get(ctx, session, fs.Arg(0))
	if err != nil {
		return a.fail(ctx, err, client.MsgLoadServices)
	}
	printService(a.out, svc)

	if *date != "" {
		avail, err := a.bookings.Availability(ctx, session, svc.ID, *date)
		if err != nil {
			return a.fail(ctx, err, "Erro ao verificar disponibilidade")
		}
		printAvailability(a.out, *date, avail)
	} else if session.Role() == models.RoleCustomer {
		fmt.Fprintf(a.out, "\nHorários: %s\nData mínima: %s\n", strings.Join(a.bookings.TimeSlots(), " "), format.Date(a.bookings.MinDate()))
	}
	return nil
}

func (a *app) cmdMyServices(ctx context.Context, _ []string) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	services, err := a.catalog.ListMine(ctx, session)
	if err != nil {
		return a.fail(ctx, err, client.MsgLoadServices)
	}
	printServices(a.out, services)
	return nil
}

type serviceFlags struct {
	fs          *flag.FlagSet
	name        string
	description string
	category    string
	duration    int
	price       string
}

func newServiceFlags(name string) *serviceFlags {
	sf := &serviceFlags{fs: newFlags(name)}
	sf.fs.StringVar(&sf.name, "name", "", "service name")
	sf.fs.StringVar(&sf.description, "description", "", "description")
	sf.fs.StringVar(&sf.category, "category", "", "category")
	sf.fs.IntVar(&sf.duration, "duration", 0, "duration in minutes")
	sf.fs.StringVar(&sf.price, "price", "", "price in Kz")
	return sf
}

// apply copies the flags that were set onto in.
func (sf *serviceFlags) apply(in *models.ServiceInput) error {
	var err error
	sf.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			in.Name = sf.name
		case "description":
			in.Description = sf.description
		case "category":
			in.Category = models.ServiceCategory(strings.ToUpper(sf.category))
		case "duration":
			in.Duration = sf.duration
		case "price":
			p, perr := decimal.NewFromString(sf.price)
			if perr != nil {
				err = fmt.Errorf("invalid price %q", sf.price)
				return
			}
			in.Price = p
		}
	})
	return err
}

func (a *app) cmdServiceCreate(ctx context.Context, args []string) error {
	sf := newServiceFlags("service-create")
	if err := sf.fs.Parse(args); err != nil {
		return err
	}
	var in models.ServiceInput
	if err := sf.apply(&in); err != nil {
		return err
	}

	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	svc, err := a.catalog.Create(ctx, session, in)
	if err != nil {
		return a.fail(ctx, err, client.MsgSaveService)
	}
	printService(a.out, svc)
	return nil
}

func (a *app) cmdServiceUpdate(ctx context.Context, args []string) error {
	sf := newServiceFlags("service-update")
	if err := sf.fs.Parse(args); err != nil {
		return err
	}
	if err := needArgs(sf.fs, 1, "service-update [flags] <id>"); err != nil {
		return err
	}

	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	current, err := a.catalog.Get(ctx, session, sf.fs.Arg(0))
	if err != nil {
		return a.fail(ctx, err, client.MsgLoadServices)
	}

	in := models.ServiceInput{
		Name:        current.Name,
		Description: current.Description,
		Category:    current.Category,
		Duration:    current.Duration,
		Price:       current.Price,
	}
	if err := sf.apply(&in); err != nil {
		return err
	}

	svc, err := a.catalog.Update(ctx, session, current.ID, in)
	if err != nil {
		return a.fail(ctx, err, client.MsgSaveService)
	}
	printService(a.out, svc)
	return nil
}

func (a *app) cmdServiceToggle(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: marketplace service-toggle <id>")
	}
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	current, err := a.catalog.Get(ctx, session, args[0])
	if err != nil {
		return a.fail(ctx, err, client.MsgLoadServices)
	}
	svc, err := a.catalog.ToggleStatus(ctx, session, current)
	if err != nil {
		return a.fail(ctx, err, client.MsgSaveService)
	}
	fmt.Fprintf(a.out, "%s: %s\n", svc.Name, serviceStatusLabel(svc))
	return nil
}

func (a *app) cmdServiceDelete(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: marketplace service-delete <id>")
	}
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	if err := a.catalog.Delete(ctx, session, args[0]); err != nil {
		return a.fail(ctx, err, "Erro ao excluir serviço")
	}
	fmt.Fprintln(a.out, "Serviço excluído")
	return nil
}

func (a *app) cmdBook(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: marketplace book <serviceId> <YYYY-MM-DD> <HH:MM>")
	}
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	svc, err := a.catalog.Fresh(ctx, session, args[0])
	if err != nil {
		return a.fail(ctx, err, client.MsgLoadServices)
	}

	created, err := a.bookings.Create(ctx, session, service.CreateBookingInput{
		Service:   svc,
		Date:      args[1],
		StartTime: args[2],
	})
	if err != nil {
		return a.fail(ctx, err, client.MsgCreateBooking)
	}
	printBooking(a.out, created, session.Role(), a.bookings.Now())
	return nil
}

type bookingListFlags struct {
	tab     dashboard.Tab
	filters models.BookingFilters
}

func parseBookingListFlags(name string, args []string) (*bookingListFlags, error) {
	fs := newFlags(name)
	tab := fs.String("tab", "all", "tab")
	status := fs.String("status", "", "server-side status filter")
	date := fs.String("date", "", "YYYY-MM-DD")
	serviceID := fs.String("service", "", "service id")
	page := fs.Int("page", 0, "page")
	limit := fs.Int("limit", models.DefaultPageSize, "page size")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	t, err := dashboard.ParseTab(*tab)
	if err != nil {
		return nil, err
	}
	st := models.BookingStatus(strings.ToUpper(*status))
	if st != "" && !st.Valid() {
		return nil, fmt.Errorf("unknown status %q", *status)
	}
	return &bookingListFlags{
		tab: t,
		filters: models.BookingFilters{
			Status:    st,
			Date:      *date,
			ServiceID: *serviceID,
			Page:      *page,
			Limit:     *limit,
		},
	}, nil
}

func (a *app) loadView(ctx context.Context, session *models.Session, f *bookingListFlags) (*service.BookingsView, error) {
	view := service.NewBookingsView(a.bookings, session, a.bus, a.logger)
	view.SetFilters(f.filters)
	view.SetTab(f.tab)
	if err := view.Reload(ctx); err != nil {
		return nil, a.fail(ctx, err, client.MsgLoadBookings)
	}
	return view, nil
}

func (a *app) cmdBookings(ctx context.Context, args []string) error {
	f, err := parseBookingListFlags("bookings", args)
	if err != nil {
		return err
	}
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	view, err := a.loadView(ctx, session, f)
	if err != nil {
		return err
	}
	snap := view.Snapshot()
	printTabs(a.out, snap.Stats, snap.Tab)
	printBookings(a.out, snap.Bookings, session.Role())
	if p := snap.Pagination; p != nil && p.TotalPages > 1 {
		fmt.Fprintf(a.out, "Página %d de %d (%d reservas)\n", p.Page, p.TotalPages, p.Total)
	}
	return nil
}

func (a *app) cmdBooking(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: marketplace booking <id>")
	}
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	b, err := a.bookings.Get(ctx, session, args[0])
	if err != nil {
		return a.fail(ctx, err, "Erro ao carregar reserva")
	}
	printBooking(a.out, b, session.Role(), a.bookings.Now())
	return nil
}

// selectedView loads the list and the booking id so a mutation acts on a
// fresh local copy.
func (a *app) selectedView(ctx context.Context, session *models.Session, id string) (*service.BookingsView, error) {
	view := service.NewBookingsView(a.bookings, session, a.bus, a.logger)
	view.Select(id)
	if err := view.Reload(ctx); err != nil {
		return nil, a.fail(ctx, err, client.MsgLoadBookings)
	}
	return view, nil
}

func (a *app) cmdConfirm(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: marketplace confirm <id>")
	}
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	view, err := a.selectedView(ctx, session, args[0])
	if err != nil {
		return err
	}

	_, opErr := view.Confirm(ctx, args[0])
	if snap := view.Snapshot(); snap.Selected != nil {
		printBooking(a.out, snap.Selected, session.Role(), a.bookings.Now())
	}
	if opErr != nil {
		return a.fail(ctx, opErr, client.MsgConfirmBooking)
	}
	return nil
}

func (a *app) cmdCancel(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: marketplace cancel <id> <reason...>")
	}
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	reason := strings.Join(args[1:], " ")
	view, err := a.selectedView(ctx, session, args[0])
	if err != nil {
		return err
	}

	_, opErr := view.Cancel(ctx, args[0], reason)
	if snap := view.Snapshot(); snap.Selected != nil {
		printBooking(a.out, snap.Selected, session.Role(), a.bookings.Now())
	}
	if opErr != nil {
		return a.fail(ctx, opErr, client.MsgCancelBooking)
	}
	return nil
}

func (a *app) cmdBalance(ctx context.Context, _ []string) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	bal, err := a.wallet.Balance(ctx, session)
	if err != nil {
		return a.fail(ctx, err, client.MsgLoadWallet)
	}
	fmt.Fprintf(a.out, "Saldo: %s\n", format.Currency(bal.Balance))
	return nil
}

func (a *app) cmdTransactions(ctx context.Context, args []string) error {
	fs := newFlags("transactions")
	tabFlag := fs.String("tab", "all", "all, credito or debito")
	txType := fs.String("type", "", "server-side type filter")
	page := fs.Int("page", 0, "page")
	limit := fs.Int("limit", models.DefaultPageSize, "page size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	tab, err := wallet.ParseTab(*tabFlag)
	if err != nil {
		return err
	}

	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	txPage, err := a.wallet.Transactions(ctx, session, models.TransactionQuery{
		Type:  models.TransactionType(strings.ToUpper(*txType)),
		Page:  *page,
		Limit: *limit,
	})
	if err != nil {
		return a.fail(ctx, err, client.MsgLoadWallet)
	}

	for _, issue := range wallet.CheckLedger(txPage.Items) {
		a.logger.Warn().Str("transaction_id", issue.TransactionID).Str("reason", issue.Reason).Msg("Ledger mismatch")
	}
	printTransactions(a.out, wallet.FilterTransactions(txPage.Items, tab))
	return nil
}

func (a *app) cmdDeposit(ctx context.Context, args []string) error {
	if len(args) < 1 {
		fmt.Fprintf(a.out, "Valor mínimo: %s\nValores rápidos:", format.Currency(a.wallet.MinDeposit()))
		for _, q := range a.wallet.QuickAmounts() {
			fmt.Fprintf(a.out, " %s", format.Currency(q))
		}
		fmt.Fprintln(a.out)
		return errors.New("usage: marketplace deposit <amount> [description...]")
	}

	amount, err := decimal.NewFromString(strings.ReplaceAll(args[0], ",", "."))
	if err != nil {
		return a.fail(ctx, wallet.ErrInvalidAmount, client.MsgDeposit)
	}

	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	tx, err := a.wallet.Deposit(ctx, session, amount, strings.Join(args[1:], " "))
	if err != nil {
		return a.fail(ctx, err, client.MsgDeposit)
	}
	if tx != nil && !tx.BalanceAfter.IsZero() {
		fmt.Fprintf(a.out, "Novo saldo: %s\n", format.Currency(tx.BalanceAfter))
	}
	return nil
}

func (a *app) cmdDashboard(ctx context.Context, _ []string) error {
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	page, err := a.bookings.List(ctx, session, models.BookingFilters{})
	if err != nil {
		return a.fail(ctx, err, client.MsgLoadBookings)
	}

	switch session.Role() {
	case models.RoleProvider:
		services, err := a.catalog.ListMine(ctx, session)
		if err != nil {
			return a.fail(ctx, err, client.MsgLoadServices)
		}
		printProviderSummary(a.out, dashboard.ProviderStats(page.Items, services, a.bookings.Now()))
	case models.RoleCustomer:
		bal, err := a.wallet.Balance(ctx, session)
		if err != nil {
			return a.fail(ctx, err, client.MsgLoadWallet)
		}
		printCustomerSummary(a.out, dashboard.CustomerStats(page.Items), bal)
	}

	fmt.Fprintln(a.out, "\nReservas recentes")
	printBookings(a.out, dashboard.Recent(page.Items, 5), session.Role())
	return nil
}

func (a *app) cmdExport(ctx context.Context, args []string) error {
	f, err := parseBookingListFlags("export", args)
	if err != nil {
		return err
	}
	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	page, err := a.bookings.List(ctx, session, f.filters)
	if err != nil {
		return a.fail(ctx, err, client.MsgLoadBookings)
	}

	path, err := a.exporter.Bookings(page.Items, f.tab, session.Role(), a.bookings.Now())
	if err != nil {
		return a.fail(ctx, err, "Erro ao exportar reservas")
	}
	fmt.Fprintln(a.out, path)
	return nil
}

// cmdWatch reloads the booking list on an interval and prints the tab counts
// whenever they change.
func (a *app) cmdWatch(ctx context.Context, args []string) error {
	fs := newFlags("watch")
	interval := fs.Duration("interval", 30*time.Second, "reload interval")
	tab := fs.String("tab", "all", "tab")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *interval <= 0 {
		return errors.New("interval must be positive")
	}
	t, err := dashboard.ParseTab(*tab)
	if err != nil {
		return err
	}

	session, err := a.session(ctx)
	if err != nil {
		return err
	}
	startMetrics(ctx, a.cfg, a.logger)

	view := service.NewBookingsView(a.bookings, session, a.bus, a.logger)
	view.SetTab(t)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	var last *dashboard.Stats
	for {
		if err := view.Reload(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if a.auth.Expire(ctx, err) {
				return a.fail(ctx, err, "")
			}
			a.logger.Warn().Err(err).Msg("Reload failed")
		} else if snap := view.Snapshot(); last == nil || *last != snap.Stats {
			stats := snap.Stats
			last = &stats
			fmt.Fprintf(a.out, "[%s] ", a.bookings.Now().Format("15:04:05"))
			printTabs(a.out, snap.Stats, snap.Tab)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
