// Command evaluate runs the offline evaluation suite: it ranks every
// judged query with each retrieval model and reports precision@k, average
// precision, MAP, NDCG@k, and the Jaccard overlap between the models'
// top-k result sets.
//
// Usage:
//
//	go run ./cmd/evaluate [-config configs/development.yaml] [-k 10]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/searchcore-labs/retrieval-ranking-platform/internal/corpus"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/evaluation"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/ranker"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/session"
	"github.com/searchcore-labs/retrieval-ranking-platform/internal/store"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/config"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/logger"
	"github.com/searchcore-labs/retrieval-ranking-platform/pkg/postgres"
)

// modelReport accumulates per-query metric values for one retrieval model.
type modelReport struct {
	name       string
	relevances [][]int
	precisions []float64
	ndcgs      []float64
	topk       map[int][]int // query id -> top-k doc ids
}

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	judgmentsPath := flag.String("judgments", "", "JSON judgments file (overrides the Postgres store)")
	k := flag.Int("k", 10, "rank cutoff for precision@k, NDCG@k, and overlap")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docs, queries, err := loadEvaluationData(ctx, cfg, *judgmentsPath)
	if err != nil {
		slog.Error("failed to load evaluation data", "error", err)
		os.Exit(1)
	}
	if len(queries) == 0 {
		slog.Error("no judged queries to evaluate")
		os.Exit(1)
	}

	sess, err := session.New(ctx, corpus.TokenizeAll(docs), session.Params{
		K1:        cfg.Retrieval.K1,
		B:         cfg.Retrieval.B,
		Alpha:     cfg.Retrieval.Alpha,
		Normalize: cfg.Retrieval.Normalize,
	})
	if err != nil {
		slog.Error("failed to build retrieval session", "error", err)
		os.Exit(1)
	}
	slog.Info("evaluation starting",
		"documents", sess.DocCount(),
		"queries", len(queries),
		"k", *k,
	)

	reports := make([]*modelReport, 0, 2)
	for _, strategy := range sess.Strategies() {
		report, err := evaluateModel(ctx, strategy, queries, *k)
		if err != nil {
			slog.Error("evaluation failed", "model", strategy.Name(), "error", err)
			os.Exit(1)
		}
		reports = append(reports, report)
	}

	printReport(os.Stdout, reports, queries, *k)
}

// evaluateModel ranks every judged query with one strategy and collects the
// per-query metric inputs. Rankings use the full candidate set so average
// precision sees every retrieved document.
func evaluateModel(ctx context.Context, strategy ranker.Strategy, queries []store.JudgedQuery, k int) (*modelReport, error) {
	report := &modelReport{
		name: strategy.Name(),
		topk: make(map[int][]int, len(queries)),
	}
	for _, q := range queries {
		results, err := strategy.Rank(ctx, q.Text, 0)
		if err != nil {
			return nil, fmt.Errorf("ranking query %d (%q): %w", q.ID, q.Text, err)
		}

		grades := q.Grades()
		relevance := make([]int, len(results))
		gains := make([]float64, len(results))
		for i, r := range results {
			grade := grades[r.DocID]
			gains[i] = float64(grade)
			if grade > 0 {
				relevance[i] = 1
			}
		}

		precision, err := evaluation.PrecisionAtK(relevance, k)
		if err != nil {
			return nil, err
		}
		ndcg, err := evaluation.NDCGAtK(gains, k)
		if err != nil {
			return nil, err
		}

		report.relevances = append(report.relevances, relevance)
		report.precisions = append(report.precisions, precision)
		report.ndcgs = append(report.ndcgs, ndcg)
		report.topk[q.ID] = topIDs(results, k)
	}
	return report, nil
}

// printReport writes the per-model summary table and, when both models
// ran, the mean Jaccard overlap of their top-k result sets.
func printReport(out *os.File, reports []*modelReport, queries []store.JudgedQuery, k int) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "model\tqueries\tP@%d\tMAP\tNDCG@%d\n", k, k)
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%d\t%.4f\t%.4f\t%.4f\n",
			r.name,
			len(r.relevances),
			mean(r.precisions),
			evaluation.MeanAveragePrecision(r.relevances),
			mean(r.ndcgs),
		)
	}
	w.Flush()

	if len(reports) == 2 {
		overlaps := make([]float64, 0, len(queries))
		for _, q := range queries {
			overlaps = append(overlaps,
				evaluation.JaccardSimilarity(reports[0].topk[q.ID], reports[1].topk[q.ID]))
		}
		fmt.Fprintf(out, "\nmean top-%d jaccard(%s, %s): %.4f\n",
			k, reports[0].name, reports[1].name, mean(overlaps))
	}
}

func loadEvaluationData(ctx context.Context, cfg *config.Config, judgmentsPath string) ([]corpus.RawDocument, []store.JudgedQuery, error) {
	if cfg.Corpus.Source == "file" {
		docs, err := store.LoadCorpusFile(cfg.Corpus.File)
		if err != nil {
			return nil, nil, err
		}
		if judgmentsPath == "" {
			return nil, nil, fmt.Errorf("-judgments is required when corpus.source is file")
		}
		queries, err := store.LoadJudgmentsFile(judgmentsPath)
		return docs, queries, err
	}

	client, err := postgres.New(cfg.Postgres)
	if err != nil {
		return nil, nil, err
	}
	defer client.Close()

	corpusStore := store.New(client)
	docs, err := corpusStore.LoadDocuments(ctx)
	if err != nil {
		return nil, nil, err
	}
	var queries []store.JudgedQuery
	if judgmentsPath != "" {
		queries, err = store.LoadJudgmentsFile(judgmentsPath)
	} else {
		queries, err = corpusStore.LoadJudgedQueries(ctx)
	}
	return docs, queries, err
}

func topIDs(results []ranker.ScoredDoc, k int) []int {
	if k > len(results) {
		k = len(results)
	}
	ids := make([]int, k)
	for i := 0; i < k; i++ {
		ids[i] = results[i].DocID
	}
	return ids
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
