package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"

	"github.com/playmatatu/ballsim/internal/config"
	"github.com/playmatatu/ballsim/internal/game"
	"github.com/playmatatu/ballsim/internal/render"
)

type viewer struct {
	screen tcell.Screen
	drawer *render.TerminalDrawer
	stage  *game.Stage
	sound  *clicker
	prev   []game.BallState
	paused bool
}

func main() {
	mute := flag.Bool("mute", false, "disable bounce sounds")
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	godotenv.Load()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// the terminal belongs to tcell from here on
	log.SetOutput(io.Discard)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	m := game.NewManager(nil, nil, cfg)
	stage, err := m.InitializeDefaultStage(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer screen.Fini()

	sound, err := newClicker(!*mute)
	if err != nil {
		log.Printf("Audio initialization failed: %v", err)
	}

	v := &viewer{
		screen: screen,
		drawer: render.NewTerminalDrawer(screen),
		stage:  stage,
		sound:  sound,
	}
	v.run(game.TickInterval(cfg.TickRateHz))
}

func (v *viewer) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			events <- v.screen.PollEvent()
		}
	}()

	v.draw()
	for {
		select {
		case ev := <-events:
			if !v.handleInput(ev) {
				return
			}
		case <-ticker.C:
			if v.paused {
				continue
			}
			f := v.stage.Advance()
			if bounced(v.prev, f.Balls) {
				v.sound.click(660)
			}
			v.prev = f.Balls
			v.draw()
		}
	}
}

func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case 'r':
			v.stage.Randomize()
			v.prev = nil
		case 'p':
			v.stage.SetPairwise(!v.stage.Frame().Pairwise)
		case ' ':
			v.paused = !v.paused
		}
		v.draw()

	case *tcell.EventResize:
		v.screen.Sync()
		v.draw()
	}
	return true
}

func (v *viewer) draw() {
	v.stage.Draw(v.drawer)

	f := v.stage.Frame()
	pairwise := "off"
	if f.Pairwise {
		pairwise = "on"
	}
	status := fmt.Sprintf(" tick %d  balls %d  pairwise %s  [r]andomize [p]airwise [space] pause [q]uit ", f.Tick, len(f.Balls), pairwise)
	if v.paused {
		status += "(paused) "
	}
	drawText(v.screen, 0, 0, status, tcell.StyleDefault.Reverse(true))

	v.drawer.Show()
}

func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	cols, _ := screen.Size()
	for _, r := range text {
		if x >= cols {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// bounced reports whether any ball reversed direction on either axis since prev.
func bounced(prev, cur []game.BallState) bool {
	for i := 0; i < len(prev) && i < len(cur); i++ {
		if prev[i].VX*cur[i].VX < 0 || prev[i].VY*cur[i].VY < 0 {
			return true
		}
	}
	return false
}
