package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	tm "github.com/buger/goterm"
	"github.com/gordonklaus/portaudio"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"

	"github.com/reelpress/reelpress/internal/domain"
	"github.com/reelpress/reelpress/internal/export"
	"github.com/reelpress/reelpress/internal/media"
	"github.com/reelpress/reelpress/internal/render"
	"github.com/reelpress/reelpress/internal/share"
	"github.com/reelpress/reelpress/internal/usage"
)

func main() {
	app := &cli.App{
		Name:  "reelpress",
		Usage: "overlay styled captions on video clips and export 9:16 renders",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "video", Usage: "source video file", Required: true},
			&cli.StringFlag{Name: "clips", Usage: "clip manifest (JSON)", Required: true},
			&cli.StringFlag{Name: "db", Usage: "usage ledger database", Value: "reelpress.db"},
			&cli.StringFlag{Name: "out", Usage: "output directory for exports", Value: "."},
			&cli.StringFlag{Name: "share-dir", Usage: "staging directory for shared artifacts", Value: "share"},
			&cli.IntFlag{Name: "quota", Usage: "daily export quota, 0 for unlimited", Value: 10},
			&cli.BoolFlag{Name: "mute", Usage: "disable the live audio monitor"},
			&cli.BoolFlag{Name: "verbose", Usage: "debug logging"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	)
	slog.SetDefault(logger)

	db, err := usage.Open(c.String("db"))
	if err != nil {
		return err
	}
	defer db.Close()
	ledger := usage.NewLedger(db, c.Int("quota"), logger)

	monitor := !c.Bool("mute")
	if monitor {
		if err := portaudio.Initialize(); err != nil {
			return fmt.Errorf("initialize audio: %w", err)
		}
		defer portaudio.Terminate()
	}

	clips, err := domain.LoadClips(c.String("clips"))
	if err != nil {
		return err
	}
	if len(clips) == 0 {
		return fmt.Errorf("clip manifest is empty")
	}

	session := domain.NewSession()
	videoPath := c.String("video")

	pipe := export.New(export.Config{
		Log:     logger,
		Session: session,
		Sink:    render.NewCompositor(export.OutputWidth, export.OutputHeight),
		Gate:    ledger,
		Counter: &usageCounter{ledger: ledger, session: session, log: logger},
		NewSource: func(path string) (export.VideoSource, error) {
			return media.OpenSource(path, logger)
		},
		NewAudio: func(path string, start, end float64) export.AudioGraph {
			return media.NewRouter(path, start, end, monitor, logger)
		},
		NewEncoder: func(w, h, fps int) export.Encoder {
			return export.NewX264Encoder(w, h, fps, logger)
		},
		OutDir: c.String("out"),
		FPS:    export.OutputFPS,
	})

	d := &dialog{
		session:   session,
		clips:     clips,
		pipe:      pipe,
		sharer:    share.NewSharer(c.String("share-dir")),
		ledger:    ledger,
		videoPath: videoPath,
	}
	d.open()
	return nil
}

// usageCounter adapts the ledger to the pipeline's increment collaborator,
// pulling the row metadata from the session at notification time.
type usageCounter struct {
	ledger  *usage.Ledger
	session *domain.Session
	log     *slog.Logger
}

func (u *usageCounter) ExportCompleted() {
	clipID, clipTitle, artifactName := "", "", ""
	if clip := u.session.Clip(); clip != nil {
		clipID = clip.ID
		clipTitle = clip.Title
	}
	if a := u.session.Artifact(); a != nil {
		artifactName = a.Name
	}
	if err := u.ledger.RecordExport(clipID, clipTitle, artifactName); err != nil {
		u.log.Error("usage increment failed", "err", err)
	}
}

type dialog struct {
	session   *domain.Session
	clips     []domain.Clip
	pipe      *export.Pipeline
	sharer    *share.Sharer
	ledger    *usage.Ledger
	videoPath string
}

func (d *dialog) open() {
	d.printHelp()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if strings.ToLower(text) == "exit" {
			break
		}
		d.processCommand(text)
	}
}

func (d *dialog) processCommand(text string) {
	if text == "clips" {
		d.listClips()
	} else if strings.HasPrefix(text, "select ") {
		d.selectClip(strings.TrimPrefix(text, "select "))
	} else if text == "templates" {
		for _, t := range domain.Templates() {
			fmt.Printf("  %-8s %s\n", t.ID, t.Name)
		}
	} else if strings.HasPrefix(text, "template ") {
		id := domain.Template(strings.TrimPrefix(text, "template "))
		if !domain.KnownTemplate(id) {
			fmt.Printf("Unknown template %q\n", id)
			return
		}
		d.session.SetTemplate(id)
	} else if strings.HasPrefix(text, "color ") {
		v := strings.TrimPrefix(text, "color ")
		d.session.UpdateStyle(func(s *domain.CustomCaptionStyle) { s.TextColor = v })
	} else if strings.HasPrefix(text, "bg ") {
		v := strings.TrimPrefix(text, "bg ")
		d.session.UpdateStyle(func(s *domain.CustomCaptionStyle) { s.BackgroundColor = v })
	} else if strings.HasPrefix(text, "opacity ") {
		v, err := strconv.Atoi(strings.TrimPrefix(text, "opacity "))
		if err != nil || v < 0 || v > 100 {
			fmt.Println("Opacity must be 0..100")
			return
		}
		d.session.UpdateStyle(func(s *domain.CustomCaptionStyle) { s.BgOpacity = v })
	} else if strings.HasPrefix(text, "weight ") {
		v := strings.TrimPrefix(text, "weight ")
		for _, w := range domain.FontWeights {
			if w == v {
				d.session.UpdateStyle(func(s *domain.CustomCaptionStyle) { s.FontWeight = v })
				return
			}
		}
		fmt.Printf("Weight must be one of %s\n", strings.Join(domain.FontWeights, ", "))
	} else if text == "status" {
		d.printStatus()
	} else if text == "export" {
		d.startExport()
	} else if text == "cancel" {
		d.pipe.Cancel()
	} else if text == "share" {
		path, err := d.sharer.Offer(d.session.Artifact())
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Printf("Staged for sharing: %s\n", path)
	} else if text == "help" {
		d.printHelp()
	} else if text != "" {
		fmt.Printf("Unknown command %q, try 'help'\n", text)
	}
}

func (d *dialog) listClips() {
	for i, clip := range d.clips {
		score := fmt.Sprintf("%3d", clip.ViralScore)
		if clip.ViralScore >= 80 {
			score = tm.Color(score, tm.GREEN)
		} else if clip.ViralScore >= 50 {
			score = tm.Color(score, tm.YELLOW)
		}
		fmt.Printf("[%d] %s %s (%.1fs, %d captions)\n",
			i, score, clip.Title, clip.Duration(), len(clip.Captions))
	}
}

func (d *dialog) selectClip(arg string) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || i < 0 || i >= len(d.clips) {
		fmt.Printf("No clip %q, see 'clips'\n", arg)
		return
	}
	d.session.SelectClip(&d.clips[i])
	fmt.Printf("Selected clip #%d: %s\n", i, d.clips[i].Title)
}

func (d *dialog) printStatus() {
	clip := d.session.Clip()
	if clip == nil {
		fmt.Println("No clip selected")
	} else {
		fmt.Printf("Clip: %s [%.1f..%.1f]\n", clip.Title, clip.Start, clip.End)
	}
	st := d.session.StyleSnapshot()
	fmt.Printf("Template: %s  text=%s bg=%s opacity=%d weight=%s\n",
		d.session.Template(), st.TextColor, st.BackgroundColor, st.BgOpacity, st.FontWeight)
	if used, err := d.ledger.UsedToday(); err == nil {
		fmt.Printf("Exports today: %d\n", used)
	}
	if a := d.session.Artifact(); a != nil {
		fmt.Printf("Last artifact: %s (%d KB)\n", a.Name, len(a.Data)/1024)
	}
}

func (d *dialog) startExport() {
	if d.session.Exporting() {
		fmt.Println("An export is already in progress")
		return
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		artifact, err := d.pipe.Export(d.videoPath)
		if err != nil {
			fmt.Printf("\nExport failed: %v\n> ", err)
			return
		}
		fmt.Printf("\n%s\n> ", tm.Color(fmt.Sprintf("Saved %s (%d KB)", artifact.Name, len(artifact.Data)/1024), tm.GREEN))
	}()
	go func() {
		for {
			select {
			case <-done:
				return
			case <-time.After(200 * time.Millisecond):
			}
			if d.session.Exporting() {
				tm.Print("\r" + tm.Color(fmt.Sprintf("Exporting %5.1f%%", d.session.Progress()), tm.CYAN))
				tm.Flush()
			}
		}
	}()
}

func (d *dialog) printHelp() {
	fmt.Print(`Commands:
  clips                 list clips from the manifest
  select <n>            pick a clip to export
  templates             list caption templates
  template <id>         pick a caption template
  color <hex>           caption text color
  bg <hex>              caption background color
  opacity <0-100>       caption background opacity
  weight <400-900>      caption font weight
  status                show current selection and quota
  export                render the selected clip to 1080x1920 MP4
  cancel                stop the running export early
  share                 stage the last artifact for sharing
  exit
`)
}
