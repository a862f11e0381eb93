package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppapman1/OpenUtau/internal/miditrack"
	"github.com/ppapman1/OpenUtau/lexicon"
	"github.com/ppapman1/OpenUtau/onnx"
	"github.com/ppapman1/OpenUtau/phonemizer"
	"github.com/ppapman1/OpenUtau/speaker"
)

type cliOptions struct {
	configPath string
	dictPath   string
	scorePath  string
	outputPath string
	ortLib     string
	restGap    int
	stdout     bool
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("phonemize: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("phonemize: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to the singer YAML config")
	flag.StringVar(&opts.dictPath, "dict", "", "Path to the YAML pronunciation dictionary")
	flag.StringVar(&opts.scorePath, "score", "", "MIDI score with lyric events")
	flag.StringVar(&opts.outputPath, "output", "", "JSON file to write results (default: stdout)")
	flag.StringVar(&opts.ortLib, "ort", "", "Path to the ONNX Runtime shared library")
	flag.IntVar(&opts.restGap, "rest-gap", 0, "Rest length in ticks that splits phrases (default: half a quarter note)")
	flag.BoolVar(&opts.stdout, "stdout", false, "Print a per-phrase summary to STDOUT")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --config FILE --dict FILE --score FILE [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.dictPath = strings.TrimSpace(opts.dictPath)
	opts.scorePath = strings.TrimSpace(opts.scorePath)
	opts.outputPath = strings.TrimSpace(opts.outputPath)

	if opts.configPath == "" {
		flag.Usage()
		return opts, errors.New("missing required --config file")
	}
	if opts.dictPath == "" {
		flag.Usage()
		return opts, errors.New("missing required --dict file")
	}
	if opts.scorePath == "" {
		flag.Usage()
		return opts, errors.New("missing required --score file")
	}
	return opts, nil
}

type noteOutput struct {
	Tick     int                  `json:"tick"`
	Phonemes []phonemizer.Phoneme `json:"phonemes"`
}

type phraseOutput struct {
	StartTick int          `json:"startTick"`
	Notes     []noteOutput `json:"notes"`
}

func run(opts cliOptions) error {
	cfg, err := phonemizer.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load singer config: %w", err)
	}
	dict, err := lexicon.LoadFile(opts.dictPath)
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}
	vocab, err := phonemizer.LoadVocabularyFile(cfg.Phonemes)
	if err != nil {
		return fmt.Errorf("load phoneme list: %w", err)
	}

	if err := onnx.Init(opts.ortLib); err != nil {
		return err
	}
	defer onnx.Shutdown()
	encoder, err := onnx.NewLinguistic(cfg.Linguistic)
	if err != nil {
		return fmt.Errorf("init linguistic model: %w", err)
	}
	defer encoder.Close()
	durations, err := onnx.NewDuration(cfg.Dur, cfg.MultiSpeaker())
	if err != nil {
		return fmt.Errorf("init duration model: %w", err)
	}
	defer durations.Close()

	var embedder phonemizer.SpeakerEmbedder
	if cfg.MultiSpeaker() {
		bank, err := speaker.LoadBank(filepath.Dir(opts.configPath), cfg.Speakers)
		if err != nil {
			return fmt.Errorf("load speaker embeddings: %w", err)
		}
		embedder = bank
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)
	service, err := phonemizer.NewService(dict, encoder, durations, embedder, cfg, vocab, logger)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}

	score, err := miditrack.Load(opts.scorePath)
	if err != nil {
		return fmt.Errorf("read score: %w", err)
	}
	if len(score.Notes) == 0 {
		return errors.New("score contains no notes")
	}
	restGap := opts.restGap
	if restGap <= 0 {
		restGap = score.TicksPerQuarter / 2
	}

	ctx := context.Background()
	var output []phraseOutput
	for _, phrase := range score.Phrases(restGap) {
		result, err := service.PhonemizePhrase(ctx, phrase, score.Tempo)
		if err != nil {
			return fmt.Errorf("phrase at tick %d: %w", phrase[0].Position, err)
		}
		output = append(output, toPhraseOutput(phrase[0].Position, result))
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if opts.outputPath == "" {
		fmt.Println(string(data))
	} else {
		if err := os.MkdirAll(filepath.Dir(opts.outputPath), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		if err := os.WriteFile(opts.outputPath, data, 0o644); err != nil {
			return fmt.Errorf("write results: %w", err)
		}
		logger.Printf("wrote %d phrases to %s", len(output), opts.outputPath)
	}
	if opts.stdout {
		printSummary(output)
	}
	return nil
}

func toPhraseOutput(startTick int, result phonemizer.PhraseResult) phraseOutput {
	out := phraseOutput{StartTick: startTick}
	ticks := make([]int, 0, len(result))
	for tick := range result {
		ticks = append(ticks, tick)
	}
	sort.Ints(ticks)
	for _, tick := range ticks {
		out.Notes = append(out.Notes, noteOutput{Tick: tick, Phonemes: result[tick]})
	}
	return out
}

func printSummary(phrases []phraseOutput) {
	for i, phrase := range phrases {
		total := 0
		for _, note := range phrase.Notes {
			total += len(note.Phonemes)
		}
		fmt.Printf("%d. tick %d: %d notes, %d phonemes\n", i+1, phrase.StartTick, len(phrase.Notes), total)
	}
}
