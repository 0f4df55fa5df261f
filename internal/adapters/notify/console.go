package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/alejandrodnm/roundbet/internal/ports"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier y la salida tabular de la CLI.
type Console struct {
	out io.Writer
	now func() time.Time
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout, now: time.Now}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w, now: time.Now}
}

// Notify imprime una línea por evento.
func (c *Console) Notify(_ context.Context, events []domain.Event) error {
	ts := c.now().Format("15:04:05")
	for _, e := range events {
		fmt.Fprintf(c.out, "[%s] %s\n", ts, eventLine(e))
	}
	return nil
}

func eventLine(e domain.Event) string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if roundScoped(e.Kind) {
		fmt.Fprintf(&sb, " #%d", e.RoundID)
	}
	for _, a := range e.Attrs {
		fmt.Fprintf(&sb, " %s=%s", a.Key, a.Value)
	}
	return sb.String()
}

func roundScoped(k domain.EventKind) bool {
	switch k {
	case domain.EventConfigUpdated, domain.EventPaused, domain.EventResumed, domain.EventFundDistributed:
		return false
	}
	return true
}

// PrintReceipt imprime los eventos y transfers de una operación confirmada.
func (c *Console) PrintReceipt(r domain.Receipt) {
	_ = c.Notify(context.Background(), r.Events)
	if len(r.Transfers) > 0 {
		c.PrintTransfers(r.Transfers)
	}
}

// PrintStatus imprime las rondas en curso con el tiempo restante de cada fase.
func (c *Console) PrintStatus(st domain.Status) {
	now := c.now()
	state := "running"
	if st.Paused {
		state = "PAUSED"
	}
	fmt.Fprintf(c.out, "\n[%s] market %s, next round #%d\n", now.Format("15:04:05"), state, st.NextRoundID)

	if st.Bidding == nil && st.Live == nil {
		fmt.Fprintln(c.out, "  no rounds yet: run advance to open the first one")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Round", "Stage", "Opens", "Closes", "Open price", "Bull", "Bear", "Next step")
	if b := st.Bidding; b != nil {
		table.Append(
			fmt.Sprintf("#%d", b.ID),
			string(domain.StageBidding),
			b.OpenTime.Format(time.RFC3339),
			b.CloseTime.Format(time.RFC3339),
			"-",
			b.Pools.Bull.Dec(),
			b.Pools.Bear.Dec(),
			"promote in "+countdown(now, b.OpenTime),
		)
	}
	if l := st.Live; l != nil {
		table.Append(
			fmt.Sprintf("#%d", l.ID),
			string(domain.StageLive),
			l.OpenTime.Format(time.RFC3339),
			l.CloseTime.Format(time.RFC3339),
			l.OpenPrice.Dec(),
			l.Pools.Bull.Dec(),
			l.Pools.Bear.Dec(),
			"close in "+countdown(now, l.CloseTime),
		)
	}
	table.Render()
}

// PrintRound imprime una ronda terminada.
func (c *Console) PrintRound(r domain.FinishedRound) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Round", "Open", "Close", "Open price", "Close price", "Winner", "Bull", "Bear")
	table.Append(
		fmt.Sprintf("#%d", r.ID),
		r.OpenTime.Format(time.RFC3339),
		r.CloseTime.Format(time.RFC3339),
		r.OpenPrice.Dec(),
		r.ClosePrice.Dec(),
		r.Winner.Label(),
		r.Pools.Bull.Dec(),
		r.Pools.Bear.Dec(),
	)
	table.Render()
}

// PrintBets imprime una página del historial de apuestas.
func (c *Console) PrintBets(bets []domain.Bet) {
	if len(bets) == 0 {
		fmt.Fprintln(c.out, "  no bets")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("Round", "Player", "Direction", "Amount")
	for _, b := range bets {
		table.Append(fmt.Sprintf("#%d", b.RoundID), string(b.Player), string(b.Direction), b.Amount.Dec())
	}
	table.Render()
	fmt.Fprintf(c.out, "  next page: --start-after %d\n", bets[len(bets)-1].RoundID)
}

// PrintPosition imprime las apuestas del jugador en las rondas actuales.
func (c *Console) PrintPosition(player domain.Address, pos domain.Position) {
	fmt.Fprintf(c.out, "position of %s\n", player)
	c.printSlotBet("bidding", pos.Bidding)
	c.printSlotBet("live", pos.Live)
}

func (c *Console) printSlotBet(stage string, b *domain.Bet) {
	if b == nil {
		fmt.Fprintf(c.out, "  %-8s -\n", stage)
		return
	}
	fmt.Fprintf(c.out, "  %-8s #%d %s %s\n", stage, b.RoundID, b.Direction, b.Amount.Dec())
}

// PrintTransfers imprime intenciones de transferencia.
func (c *Console) PrintTransfers(transfers []domain.Transfer) {
	if len(transfers) == 0 {
		fmt.Fprintln(c.out, "  no transfers")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Kind", "Token", "From", "To", "Amount")
	for _, tr := range transfers {
		to := string(tr.To)
		if tr.Kind == domain.BurnFrom {
			to = "(burn)"
		}
		table.Append(shortID(tr.ID), string(tr.Kind), tr.Token, string(tr.From), to, tr.Amount.Dec())
	}
	table.Render()
}

// PrintAmount imprime una cantidad con su etiqueta.
func (c *Console) PrintAmount(label string, a domain.Amount) {
	fmt.Fprintf(c.out, "%s: %s\n", label, a.Dec())
}

// PrintConfig imprime la config vigente.
func (c *Console) PrintConfig(cfg domain.MarketConfig) {
	table := tablewriter.NewWriter(c.out)
	table.Header("Key", "Value")
	table.Append("round_duration", cfg.RoundDuration.String())
	table.Append("oracle", cfg.OracleRef)
	table.Append("minimum_bet", cfg.MinimumBet.Dec())
	table.Append("burn_fee", fmt.Sprintf("%d (%s)", cfg.BurnFeeBP, percent(cfg.BurnFeeBP)))
	table.Append("gaming_fee", fmt.Sprintf("%d (%s)", cfg.GamingFeeBP, percent(cfg.GamingFeeBP)))
	table.Append("token", cfg.TokenRef)
	table.Append("custody", string(cfg.Custody))
	table.Render()
}

// countdown formatea el tiempo que falta hasta t; "now" si ya pasó.
func countdown(now, t time.Time) string {
	d := t.Sub(now)
	if d <= 0 {
		return "now"
	}
	return d.Round(time.Second).String()
}

func percent(bp uint64) string {
	return fmt.Sprintf("%d.%02d%%", bp/domain.FeePrecision, bp%domain.FeePrecision)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

var _ ports.Notifier = (*Console)(nil)
