package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/alejandrodnm/roundbet/config"
	"github.com/alejandrodnm/roundbet/internal/adapters/notify"
	"github.com/alejandrodnm/roundbet/internal/adapters/storage"
	"github.com/alejandrodnm/roundbet/internal/application/keeper"
	"github.com/alejandrodnm/roundbet/internal/application/market"
	"github.com/alejandrodnm/roundbet/internal/domain"
	"github.com/shopspring/decimal"
)

// cli despacha los subcomandos sobre un Market ya cableado.
type cli struct {
	cfg     *config.Config
	market  *market.Market
	console *notify.Console
	outbox  *storage.Outbox
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	as := fs.String("as", c.cfg.Admin.Address, "caller address")

	switch cmd {
	case "init":
		if err := fs.Parse(args); err != nil {
			return err
		}
		mc, err := c.cfg.MarketConfig()
		if err != nil {
			return err
		}
		return c.receipt(c.market.Instantiate(ctx, domain.Address(*as), mc))

	case "advance":
		return c.receipt(c.market.AdvanceRound(ctx))

	case "keeper":
		once := fs.Bool("once", false, "advance once and exit")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return keeper.New(keeper.Config{Interval: c.cfg.KeeperInterval(), Once: *once}, c.market).Run(ctx)

	case "bet":
		round := fs.Uint64("round", 0, "bidding round id")
		dir := fs.String("dir", "", "bull|bear")
		amount := fs.String("amount", "", "gross amount")
		if err := fs.Parse(args); err != nil {
			return err
		}
		d, err := domain.ParseDirection(*dir)
		if err != nil {
			return err
		}
		gross, err := domain.ParseAmount(*amount)
		if err != nil {
			return err
		}
		return c.receipt(c.market.PlaceBet(ctx, domain.Address(*as), *round, d, gross))

	case "collect":
		if err := fs.Parse(args); err != nil {
			return err
		}
		return c.receipt(c.market.CollectWinnings(ctx, domain.Address(*as)))

	case "status":
		st, err := c.market.Status(ctx)
		if err != nil {
			return err
		}
		c.console.PrintStatus(st)
		return nil

	case "config":
		mc, err := c.market.Config(ctx)
		if err != nil {
			return err
		}
		c.console.PrintConfig(mc)
		return nil

	case "fee":
		fee, err := c.market.AccumulatedFee(ctx)
		if err != nil {
			return err
		}
		c.console.PrintAmount("accumulated fee", fee)
		return nil

	case "round":
		id := fs.Uint64("id", 0, "round id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		r, err := c.market.FinishedRound(ctx, *id)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("round %d is not finished yet or does not exist: %w", *id, err)
		}
		if err != nil {
			return err
		}
		c.console.PrintRound(r)
		return nil

	case "position":
		if err := fs.Parse(args); err != nil {
			return err
		}
		pos, err := c.market.CurrentPosition(ctx, domain.Address(*as))
		if err != nil {
			return err
		}
		c.console.PrintPosition(domain.Address(*as), pos)
		return nil

	case "history":
		startAfter := fs.Int64("start-after", -1, "last round id of the previous page")
		limit := fs.Int("limit", domain.DefaultPageSize, "page size (max 30)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		var cursor *uint64
		if *startAfter >= 0 {
			v := uint64(*startAfter)
			cursor = &v
		}
		bets, err := c.market.BetHistory(ctx, domain.Address(*as), cursor, *limit)
		if err != nil {
			return err
		}
		c.console.PrintBets(bets)
		return nil

	case "pending":
		if err := fs.Parse(args); err != nil {
			return err
		}
		reward, err := c.market.PendingReward(ctx, domain.Address(*as))
		if err != nil {
			return err
		}
		c.console.PrintAmount("pending reward", reward)
		return nil

	case "transfers":
		limit := fs.Int("limit", 50, "max transfers to list")
		ack := fs.Bool("ack", false, "mark the listed transfers as delivered")
		if err := fs.Parse(args); err != nil {
			return err
		}
		pending, err := c.outbox.Pending(ctx, *limit)
		if err != nil {
			return err
		}
		c.console.PrintTransfers(pending)
		if !*ack || len(pending) == 0 {
			return nil
		}
		ids := make([]string, 0, len(pending))
		for _, tr := range pending {
			ids = append(ids, tr.ID)
		}
		return c.outbox.MarkDelivered(ctx, ids, time.Now())

	case "pause":
		if err := fs.Parse(args); err != nil {
			return err
		}
		return c.receipt(c.market.Pause(ctx, domain.Address(*as)))

	case "resume":
		if err := fs.Parse(args); err != nil {
			return err
		}
		return c.receipt(c.market.Resume(ctx, domain.Address(*as)))

	case "update-config":
		p, err := parsePartialConfig(fs, args)
		if err != nil {
			return err
		}
		return c.receipt(c.market.UpdateConfig(ctx, domain.Address(*as), p))

	case "distribute":
		if err := fs.Parse(args); err != nil {
			return err
		}
		shares, err := parseShares(fs.Args())
		if err != nil {
			return err
		}
		return c.receipt(c.market.DistributeFund(ctx, domain.Address(*as), shares))
	}
	return fmt.Errorf("unknown command %q (run with -h for usage)", cmd)
}

// receipt imprime los transfers de una operación; los eventos ya los publicó
// el notifier.
func (c *cli) receipt(r domain.Receipt, err error) error {
	if err != nil {
		return err
	}
	if len(r.Transfers) > 0 {
		c.console.PrintTransfers(r.Transfers)
	}
	return nil
}

// parsePartialConfig solo incluye los flags que se pasaron explícitamente.
func parsePartialConfig(fs *flag.FlagSet, args []string) (domain.PartialConfig, error) {
	duration := fs.Int("duration", 0, "round duration in seconds")
	minBet := fs.String("min-bet", "", "minimum gross bet")
	burn := fs.Uint64("burn-fee", 0, "burn fee (1/100 of a percent)")
	gaming := fs.Uint64("gaming-fee", 0, "gaming fee (1/100 of a percent)")
	oracleRef := fs.String("oracle", "", "oracle feed reference")
	tokenRef := fs.String("token", "", "token reference")
	custody := fs.String("custody", "", "custody address")
	if err := fs.Parse(args); err != nil {
		return domain.PartialConfig{}, err
	}

	var p domain.PartialConfig
	var err error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "duration":
			d := time.Duration(*duration) * time.Second
			p.RoundDuration = &d
		case "min-bet":
			v, perr := domain.ParseAmount(*minBet)
			if perr != nil {
				err = perr
				return
			}
			p.MinimumBet = &v
		case "burn-fee":
			p.BurnFeeBP = burn
		case "gaming-fee":
			p.GamingFeeBP = gaming
		case "oracle":
			p.OracleRef = oracleRef
		case "token":
			p.TokenRef = tokenRef
		case "custody":
			a := domain.Address(*custody)
			p.Custody = &a
		}
	})
	return p, err
}

// parseShares lee pares ADDR=RATIO, p.ej. "dev1=0.5 dev2=0.5".
func parseShares(args []string) ([]domain.WalletShare, error) {
	shares := make([]domain.WalletShare, 0, len(args))
	for _, arg := range args {
		addr, ratio, ok := strings.Cut(arg, "=")
		if !ok || addr == "" {
			return nil, fmt.Errorf("share %q: want ADDR=RATIO", arg)
		}
		r, err := decimal.NewFromString(ratio)
		if err != nil {
			return nil, fmt.Errorf("share %q: %w", arg, err)
		}
		shares = append(shares, domain.WalletShare{Address: domain.Address(addr), Ratio: r})
	}
	return shares, nil
}
