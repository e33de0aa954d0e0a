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


// Searcher is a development tool for poking at a seeded database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/recollect"
	"github.com/poiesic/recollect/core"
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

func main() {
	db, err := recollect.NewDatabase("./history_db")
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ctx := context.Background()
	var hits []*core.SearchHit
	if len(os.Args) > 1 {
		hits, err = db.Search(ctx, strings.Join(os.Args[1:], " "), 5)
	} else {
		hits, err = db.Search(ctx, "lighthouse", 5)
	}
	if err != nil {
		panic(err)
	}

	fmt.Printf("Found %d hits\n", len(hits))
	for i, hit := range hits {
		fmt.Printf("%d: '%s' (conversation %d)[%0.3f]\n", i, hit.Chunk.Text, hit.Conversation.Id, hit.Distance)
	}
}
