// Package rag provides the retrieval side of the research assistant:
// document and chunk types, embedders, an in-memory vector store and the
// langchaingo adapters used to load and split source documents.
//
// The subpackages assemble these pieces:
//
//   - store: thread-safe in-memory vector store with metadata filters
//   - retriever: VectorRetriever, the research.Retriever over a vector store
//   - loader: text, PDF and arXiv loaders
//   - ingest: the research.Ingestor that loads, splits and indexes sources
//
// A minimal offline setup:
//
//	embedder := rag.NewHashEmbedder(256)
//	vs := store.NewInMemoryVectorStore(embedder)
//	ing := ingest.New(vs, rag.NewRecursiveSplitter(1000, 200))
//	docID, _ := ing.Ingest(ctx, "paper.pdf")
//	chunks, _ := retriever.NewVectorRetriever(vs, embedder).Search(ctx, "attention", []string{docID}, 5)
package rag
