// Research Graph - a routed research assistant in Go
//
// Research Graph answers questions about papers and local documents. A
// router inspects the shared run state and picks the next analysis action;
// each action is a node of a typed state graph and hands control back to
// the router, until the run is finalized into an answer.
//
// # Quick Start
//
// Install the command:
//
//	go install github.com/jemygraw/researchgraph/cmd/research@latest
//
// Ask a question about an arXiv paper:
//
//	export OPENAI_API_KEY=sk-...
//	research ask "What is the key methodology?" --source 1706.03762
//
// Or embed the agent:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/jemygraw/researchgraph/llms/langchain"
//		"github.com/jemygraw/researchgraph/rag"
//		"github.com/jemygraw/researchgraph/rag/retriever"
//		"github.com/jemygraw/researchgraph/rag/store"
//		"github.com/jemygraw/researchgraph/research"
//	)
//
//	func main() {
//		generator, _ := langchain.NewOpenAI()
//		embedder := rag.NewHashEmbedder(256)
//		vectors := store.NewInMemoryVectorStore(embedder)
//
//		agent, _ := research.NewAgent(generator, retriever.NewVectorRetriever(vectors, embedder))
//		final, _ := agent.Run(context.Background(), research.ResearchQuery{Text: "Compare these papers"})
//		fmt.Println(final.FinalAnswer)
//	}
//
// # Package Structure
//
//   - graph: typed sequential state graph with conditional edges, listeners,
//     tracing, snapshot listeners and Mermaid export
//   - research: actions, router, handlers, structured extraction, digest and
//     the Agent that wires them into a graph
//   - rag: documents, embedders and text splitters; rag/loader (text, PDF,
//     arXiv), rag/store (in-memory vector store), rag/retriever and
//     rag/ingest
//   - llms/langchain, llms/openai: TextGenerator implementations
//   - store: run snapshots with memory, sqlite, redis and postgres backends
//   - log: logger interface with a golog backend
//   - config: YAML configuration with environment overrides
//   - report: Markdown, HTML and terminal rendering of a finished run
//   - cmd/research: the command line host
//
// # Routing
//
// The router applies deterministic rules first (step budget, trace length,
// pending ingestion, planned actions) and asks the text generator only when
// none of them decides. Replies outside the action vocabulary finalize the
// run and are recorded in the state's error field.
package researchgraph
