// Package layertune scores candidate/reference sentence pairs at every hidden
// layer of an ONNX text encoder, using greedy token matching over contextual
// embeddings.
//
// # Quick Start
//
//	sc, err := layertune.New("models/xlm-roberta-large", layertune.WithIDF(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer sc.Close()
//
//	if err := sc.ComputeIDF(refs); err != nil {
//	    log.Fatal(err)
//	}
//	scores, err := sc.Score(ctx, cands, refs, 64)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(scores.F[len(scores.F)-1]) // last layer, one value per pair
//
// # Model Files
//
// A model directory holds model.onnx and sentencepiece.bpe.model. The ONNX
// graph must take input_ids and attention_mask and expose every layer as an
// output named hidden_states.<n>, e.g. an export with output_hidden_states
// enabled.
//
// # Thread Safety
//
// Scorer is safe for concurrent use. Batches are spread over an internal pool
// of ONNX sessions, configurable via WithPoolSize.
package layertune
