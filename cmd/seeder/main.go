// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Seeder is a development tool that fills a local database with sample
// conversations for manual search experiments.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/recollect"
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/ingestion"
)

var sentences = []string{
	"The quick brown fox jumps over the lazy dog.",
	"A gentle breeze rustled the leaves of the old oak tree.",
	"She found a hidden key in the dusty attic.",
	"The city skyline glowed under the starry night sky.",
	"He whispered secrets to the wind, hoping they would travel far.",
	"Rain drummed on the rooftop, creating a soothing rhythm.",
	"A bright comet streaked across the horizon at midnight.",
	"They laughed together as fireworks painted the evening air.",
	"The ancient library held stories that never faded.",
	"Beneath the waves, coral gardens shimmered in colors unseen.",
	"A mysterious map led them to a forgotten treasure.",
	"Sunlight filtered through curtains, turning dust motes into golden specks.",
	"The old clock chimed thirteen times in an abandoned town.",
	"A sudden thunderclap shattered the silence of the forest.",
	"The desert dunes shifted silently under a pale moon.",
	"She painted the sunset with bold strokes of crimson and gold.",
	"They discovered an ancient rune carved deep within the stone.",
	"Her laughter echoed through the empty halls of the old manor.",
	"A lone wolf howled, echoing into the vast night.",
	"The moon rose slowly, casting silver light on the lake.",
	"The lighthouse beam cut through fog, guiding sailors safely.",
	"A gentle snowfall blanketed the city in quiet white.",
	"The river's current carried leaves downstream like paper boats.",
	"They explored caves filled with stalactites glittering like chandeliers.",
	"The abandoned lighthouse still broadcasts its warning every third Tuesday.",
	"Coffee tastes better when nobody's watching.",
	"Seventeen geese unanimously voted to relocate the pond.",
	"The algorithm dreamed it was a butterfly sorting itself.",
	"The server room developed opinions about the backup schedule.",
	"The rubber duck solved the halting problem but won't tell anyone.",
	"Documentation exists in a superposition until observed.",
	"The random number generator achieved enlightenment at seed 42.",
	"Bugs are features that haven't read the specification.",
	"The garbage collector went on strike.",
	"Binary trees started growing actual leaves in autumn.",
	"The mutex died of loneliness.",
	"The infinite loop found its exit condition in philosophy.",
	"Git blame pointed at everyone simultaneously.",
	"The event loop got dizzy and sat down.",
	"The watchdog timer fell asleep.",
}

var (
	seedFileName = flag.String("src", "", "file of seed data")
	dbPath       = flag.String("db", "./history_db", "database directory")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// ingestBatched folds lines into conversations of batchSize messages each,
// alternating between two speakers, and ingests them one by one.
func ingestBatched(ctx context.Context, db *recollect.Database, source iter.Seq[string], batchSize int) error {
	batch := make([]core.Message, 0, batchSize)
	conversations := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		conversations++
		_, err := db.Ingest(ctx, ingestion.ConversationPayload{
			ScenarioTitle: fmt.Sprintf("seed conversation %d", conversations),
			Messages:      batch,
		})
		batch = batch[:0]
		return err
	}

	now := time.Now()
	i := 0
	for line := range source {
		name := "Ada"
		author := core.AuthorTypeHuman
		if i%2 == 1 {
			name = "Musa"
			author = core.AuthorTypeAI
		}
		batch = append(batch, core.Message{
			AuthorName: name,
			Author:     author,
			Contents:   line,
			Timestamp:  now.Add(time.Duration(i) * time.Second),
		})
		i++

		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func main() {
	db, err := recollect.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ctx := context.Background()

	var source iter.Seq[string]
	if *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(sentences)
	}

	if err := ingestBatched(ctx, db, source, 5); err != nil {
		panic(err)
	}
}
