package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/tictactoe"
)

const spinnerCharSet = 14

const (
	cmdLoad = "load"
	cmdSave = "save"
	cmdMenu = "menu"
	cmdQuit = "quit"
	cmdHelp = "help"
)

type controller interface {
	Game() *entity.Game
	StartSession(mode entity.GameMode) (tictactoe.Outcome, error)
	MakeTurn(x, y int) (tictactoe.Outcome, error)
	ObserveBots(ctx context.Context) error
	Save(ctx context.Context) error
	Load(ctx context.Context) error
}

// Console is a line-based host for a session: it draws the board and turns typed
// commands into controller calls.
type Console struct {
	logger  *slog.Logger
	in      *bufio.Scanner
	out     io.Writer
	spinner *spinner.Spinner

	mu          sync.Mutex
	exitEnabled bool
}

func New(logger *slog.Logger, in io.Reader, out io.Writer) *Console {
	s := spinner.New(spinner.CharSets[spinnerCharSet], 100*time.Millisecond, spinner.WithWriter(out))
	s.Suffix = " bots are playing..."

	return &Console{
		logger:      logger.With("component", "console"),
		in:          bufio.NewScanner(in),
		out:         out,
		spinner:     s,
		exitEnabled: true,
	}
}

// Refresh redraws the board with the current player or the final result.
func (that *Console) Refresh(game *entity.Game) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.withSpinnerPaused(func() {
		fmt.Fprint(that.out, Render(game))
	})
}

func (that *Console) Notify(message string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.withSpinnerPaused(func() {
		fmt.Fprintf(that.out, "! %s\n", message)
	})
}

// SetExitEnabled toggles whether the session may be left. While it is disabled a
// spinner shows that the bots are busy.
func (that *Console) SetExitEnabled(enabled bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.exitEnabled = enabled

	if enabled {
		that.spinner.Stop()
	} else {
		that.spinner.Start()
	}
}

func (that *Console) ExitEnabled() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.exitEnabled
}

func (that *Console) withSpinnerPaused(fn func()) {
	if !that.spinner.Active() {
		fn()
		return
	}

	that.spinner.Stop()
	fn()
	that.spinner.Start()
}

// Render draws the board, rows top to bottom, with row and column numbers.
func Render(game *entity.Game) string {
	var sb strings.Builder

	board := game.Board()

	sb.WriteString("\n    0   1   2\n")
	for x := 0; x < entity.BoardSize; x++ {
		if x > 0 {
			sb.WriteString("   ---+---+---\n")
		}

		fmt.Fprintf(&sb, "%d  ", x)
		for y := 0; y < entity.BoardSize; y++ {
			if y > 0 {
				sb.WriteString("|")
			}
			fmt.Fprintf(&sb, " %s ", board.At(x, y))
		}
		sb.WriteString("\n")
	}

	switch {
	case !game.IsStarted():
		sb.WriteString("No game in progress\n")
	case game.IsFinished():
		fmt.Fprintf(&sb, "%s\n", game.Result())
	default:
		fmt.Fprintf(&sb, "Current player: %s (%s)\n", game.CurrentPlayer(), game.Mode())
	}

	return sb.String()
}

// Run reads commands until quit, end of input or cancellation. The session is saved
// when leaving a game through menu or quit.
func (that *Console) Run(ctx context.Context, ctrl controller) error {
	inGame := false

	that.printMenu()

	for {
		that.prompt(inGame)

		if !that.in.Scan() {
			break
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		fields := strings.Fields(strings.ToLower(that.in.Text()))
		if len(fields) == 0 {
			continue
		}

		var (
			quit bool
			err  error
		)

		if inGame {
			inGame, quit, err = that.gameCommand(ctx, ctrl, fields)
		} else {
			inGame, quit, err = that.menuCommand(ctx, ctrl, fields)
		}

		if err != nil {
			return err
		}

		if quit {
			return nil
		}
	}

	if err := that.in.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return nil
}

func (that *Console) menuCommand(ctx context.Context, ctrl controller, fields []string) (bool, bool, error) {
	switch command := fields[0]; command {
	case cmdQuit:
		return false, true, nil
	case cmdHelp:
		that.printMenu()
	case cmdLoad:
		if err := ctrl.Load(ctx); err != nil {
			that.Notify(err.Error())
			return false, false, nil
		}

		return true, false, that.observeIfBots(ctx, ctrl)
	default:
		mode, err := entity.ParseGameMode(command)
		if err != nil {
			that.Notify(fmt.Sprintf("unknown command %q", command))
			return false, false, nil
		}

		outcome, err := ctrl.StartSession(mode)
		if err != nil {
			that.Notify(err.Error())
			return false, false, nil
		}

		if outcome.Effect == tictactoe.EffectStartBotLoop {
			return true, false, that.observeIfBots(ctx, ctrl)
		}

		return true, false, nil
	}

	return false, false, nil
}

func (that *Console) gameCommand(ctx context.Context, ctrl controller, fields []string) (bool, bool, error) {
	switch fields[0] {
	case cmdHelp:
		that.printGameHelp()
	case cmdSave:
		that.save(ctx, ctrl)
	case cmdMenu, cmdQuit:
		if !that.ExitEnabled() {
			that.Notify("wait for the bots to finish")
			return true, false, nil
		}

		that.save(ctx, ctrl)

		if fields[0] == cmdQuit {
			return false, true, nil
		}

		that.printMenu()

		return false, false, nil
	default:
		x, y, err := parseCell(fields)
		if err != nil {
			that.Notify(err.Error())
			return true, false, nil
		}

		if _, err = ctrl.MakeTurn(x, y); err != nil {
			that.Notify(err.Error())
		}
	}

	return true, false, nil
}

func (that *Console) observeIfBots(ctx context.Context, ctrl controller) error {
	if ctrl.Game().Phase() != entity.PhaseBotObserving {
		return nil
	}

	err := ctrl.ObserveBots(ctx)
	if errors.Is(err, context.Canceled) {
		return err
	}

	if err != nil {
		that.Notify(err.Error())
	}

	return nil
}

func (that *Console) save(ctx context.Context, ctrl controller) {
	if err := ctrl.Save(ctx); err != nil {
		that.Notify(err.Error())
		return
	}

	fmt.Fprintln(that.out, "Game saved")
}

func (that *Console) prompt(inGame bool) {
	if inGame {
		fmt.Fprint(that.out, "move> ")
	} else {
		fmt.Fprint(that.out, "menu> ")
	}
}

func (that *Console) printMenu() {
	fmt.Fprintln(that.out, "Tic Tac Toe: pvp | pvbot | botvbot | load | quit")
}

func (that *Console) printGameHelp() {
	fmt.Fprintln(that.out, "Enter a move as \"row col\" (0-2), or save | menu | quit")
}

func parseCell(fields []string) (int, int, error) {
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("expected \"row col\", got %q", strings.Join(fields, " "))
	}

	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad row %q", fields[0])
	}

	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("bad column %q", fields[1])
	}

	return x, y, nil
}
