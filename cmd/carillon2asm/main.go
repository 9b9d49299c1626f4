// Package main is the entry point for carillon2asm CLI
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/carillon2asm/pkg/api"
	"github.com/james-see/carillon2asm/pkg/converter"
	"github.com/james-see/carillon2asm/pkg/tui"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	savFile    string
	binFiles   []string
	romArgs    []string
	outputFile string
	serverPort int
)

var (
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true)
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, converter.ErrNoMusicSource) {
			fmt.Fprintln(os.Stderr, errorStyle.Render("ERROR: No music source loaded!"))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "carillon2asm",
	Short: "Convert Carillon editor savefiles to RGBDS music data",
	Long: `carillon2asm reads the music and sample banks of a Carillon Editor
savefile and writes them as RGBDS macro source for the Carillon driver.

Input can be a combined .sav file, separate music/sample bank dumps,
or a Game Boy ROM with the bank offsets.

Examples:
  carillon2asm song.sav
  carillon2asm --sav song.sav
  carillon2asm --bin music.bin,samples.sam -o song.crlmod
  carillon2asm --rom game.gb 0x8000 0xC000
  carillon2asm midi --sav song.sav
  carillon2asm samples --sav song.sav
  carillon2asm tui
  carillon2asm serve --port 8080`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	Args:          cobra.ArbitraryArgs,
	RunE:          runDecode,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var midiCmd = &cobra.Command{
	Use:   "midi",
	Short: "Export the song's playback order as a MIDI file",
	Args:  cobra.ArbitraryArgs,
	RunE:  runMIDI,
}

var samplesCmd = &cobra.Command{
	Use:   "samples",
	Short: "Export defined samples as WAV files",
	Args:  cobra.ArbitraryArgs,
	RunE:  runSamples,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Input selectors, shared by every subcommand
	rootCmd.PersistentFlags().StringVarP(&savFile, "sav", "s", "", "Read data from Carillon Editor .sav file")
	rootCmd.PersistentFlags().StringSliceVarP(&binFiles, "bin", "b", nil,
		"Read data from .bin/.sam files; without a SAM file no samples are assumed")
	rootCmd.PersistentFlags().StringSliceVar(&romArgs, "rom", nil,
		"Read data from a Game Boy ROM: path, music offset[, sample offset]")
	rootCmd.MarkFlagsMutuallyExclusive("sav", "bin", "rom")

	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "",
		"Output path, derived from the input filename if not set")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(midiCmd)
	rootCmd.AddCommand(samplesCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

// getSource builds the input selection from flags. Trailing positional
// arguments extend --bin and --rom the way space separated values would.
// Without a selector flag the mode is guessed from the first argument.
func getSource(args []string) (converter.Source, error) {
	switch {
	case savFile != "":
		return converter.Source{Sav: savFile}, nil
	case len(binFiles) > 0:
		return binSource(append(append([]string{}, binFiles...), args...))
	case len(romArgs) > 0:
		return romSource(append(append([]string{}, romArgs...), args...))
	case len(args) == 0:
		return converter.Source{}, converter.ErrNoMusicSource
	}

	switch converter.DetectSourceKind(args[0]) {
	case converter.SourceSav:
		if len(args) > 1 {
			return converter.Source{}, fmt.Errorf("a .sav input takes no further arguments, got %d", len(args)-1)
		}
		return converter.Source{Sav: args[0]}, nil
	case converter.SourceBin:
		return binSource(args)
	case converter.SourceROM:
		return romSource(args)
	}
	return converter.Source{}, fmt.Errorf("cannot tell the input type of %s, use --sav, --bin or --rom", args[0])
}

func binSource(files []string) (converter.Source, error) {
	if len(files) > 2 {
		return converter.Source{}, fmt.Errorf("--bin takes at most 2 files, got %d", len(files))
	}
	src := converter.Source{MusicPath: files[0]}
	if len(files) > 1 {
		src.SamplePath = files[1]
	}
	return src, nil
}

func romSource(vals []string) (converter.Source, error) {
	if len(vals) < 2 || len(vals) > 3 {
		return converter.Source{}, fmt.Errorf("--rom takes a path and 1 or 2 offsets, got %d values", len(vals))
	}
	src := converter.Source{ROMPath: vals[0]}
	off, err := converter.ParseOffset(vals[1])
	if err != nil {
		return converter.Source{}, err
	}
	src.MusicOffset = off
	if len(vals) > 2 {
		off, err := converter.ParseOffset(vals[2])
		if err != nil {
			return converter.Source{}, err
		}
		src.SampleOffset = off
		src.HasSampleOff = true
	}
	return src, nil
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	return converter.DefaultOutputPath(input, defaultExt)
}

func printWarnings(warnings []converter.Warning) {
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, warnStyle.Render("WARNING! "+w.Message))
	}
}

func runDecode(cmd *cobra.Command, args []string) error {
	src, err := getSource(args)
	if err != nil {
		return err
	}
	output := getOutputPath(src.InputName(), converter.ModuleExt)

	res, err := converter.New().ConvertFile(src, output)
	if err != nil {
		return err
	}
	printWarnings(res.Warnings)

	fmt.Printf("Converted %s -> %s\n", src.InputName(), output)
	return nil
}

func runMIDI(cmd *cobra.Command, args []string) error {
	src, err := getSource(args)
	if err != nil {
		return err
	}
	output := getOutputPath(src.InputName(), ".mid")

	conv := converter.New()
	song, err := conv.Load(src)
	if err != nil {
		return err
	}
	printWarnings(song.Warnings)

	if err := conv.WriteMIDIFile(song, output); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", src.InputName(), output)
	return nil
}

func runSamples(cmd *cobra.Command, args []string) error {
	src, err := getSource(args)
	if err != nil {
		return err
	}
	base := getOutputPath(src.InputName(), ".wav")

	song, err := converter.New().Load(src)
	if err != nil {
		return err
	}
	printWarnings(song.Warnings)

	written, err := converter.WriteSampleWAVs(song, base)
	if err != nil {
		return err
	}
	if len(written) == 0 {
		fmt.Println("No samples defined")
		return nil
	}
	for _, name := range written {
		fmt.Printf("Wrote %s\n", name)
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
