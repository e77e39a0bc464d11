// Command pgntool reads PGN games from files or standard input, checks every
// move and prints each game as canonical PGN, as its main line, or as its
// final position.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	chess "github.com/mway1/pgntree"
	"github.com/mway1/pgntree/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("pgntool", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.StringP("config", "c", "", "path to a config file")
	flags.Bool("strict", false, "reject a game at its first illegal move")
	flags.StringP("output", "o", config.OutputPGN, "what to print per game: pgn, history or fen")
	flags.String("log-level", "info", "log level")
	flags.Bool("log-development", false, "human readable logs")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		fmt.Fprintln(stderr, "pgntool:", err)
		return 2
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(stderr, "pgntool:", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	p := &processor{cfg: cfg, logger: logger, out: stdout}
	if flags.NArg() == 0 {
		p.process("stdin", stdin)
	}
	for _, path := range flags.Args() {
		f, err := os.Open(path)
		if err != nil {
			logger.Error("open input", zap.String("path", path), zap.Error(err))
			p.failed++
			continue
		}
		p.process(path, f)
		_ = f.Close()
	}

	logger.Info("done", zap.Int("games", p.games), zap.Int("failed", p.failed))
	if p.failed > 0 {
		return 1
	}
	return 0
}

type processor struct {
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
	games  int
	failed int
}

func (p *processor) process(source string, r io.Reader) {
	scanner := chess.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		log := p.logger.With(zap.String("source", source), zap.Int("game", n))
		g, err := chess.NewGameFromPGN(scanner.Text(),
			chess.ParseOptions{Strict: p.cfg.Strict, Logger: log},
			chess.WithLogger(log),
		)
		if err != nil {
			log.Error("parse game", zap.Error(err))
			p.failed++
			continue
		}
		p.games++
		log.Debug("parsed game",
			zap.Stringer("tree", g.Tree().ID()),
			zap.Int("plies", len(g.History())),
			zap.Int("moves", g.Tree().Len()),
		)
		if p.games > 1 && p.cfg.Output == config.OutputPGN {
			fmt.Fprintln(p.out)
		}
		fmt.Fprintln(p.out, render(g, p.cfg.Output))
	}
	if err := scanner.Err(); err != nil {
		p.logger.Error("read input", zap.String("source", source), zap.Error(err))
		p.failed++
	}
}

func render(g *chess.Game, output string) string {
	switch output {
	case config.OutputHistory:
		sans := make([]string, 0, len(g.History()))
		for _, m := range g.History() {
			sans = append(sans, m.SAN)
		}
		return strings.Join(sans, " ")
	case config.OutputFEN:
		return g.FEN()
	}
	return g.PGN()
}
