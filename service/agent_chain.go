package services

import (
	"fmt"
	"log"
	"strings"
)

// Node names used in the evaluation transcript.
const (
	ComplianceNode = "compliance_node"
	RiskNode       = "risk_node"
	RenewalNode    = "renewal_node"
)

// Default verdicts when the transcript is missing a node's message.
const (
	DefaultRisk    = "low"
	DefaultRenewal = "pending"
)

// AgentMessage is one named entry in the evaluation transcript.
type AgentMessage struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// ToolFunc is the capability behind an evaluation agent. The shipped tools
// are placeholders keyed on document ID parity; swapping in real business
// logic does not touch the chain's control flow.
type ToolFunc func(docID uint) string

// CheckCompliance reports whether the document is compliant.
func CheckCompliance(docID uint) string {
	if docID%2 == 0 {
		return "is compliant"
	}
	return "is not compliant"
}

// CheckRisk reports the document's risk level.
func CheckRisk(docID uint) string {
	if docID%2 == 0 {
		return "low"
	}
	return "high"
}

// CheckRenewal reports whether renewal is required.
func CheckRenewal(docID uint) string {
	if docID%2 == 0 {
		return "renewal required"
	}
	return "renewal not required"
}

// chainNode is one agent in the fixed evaluation topology. next is empty on
// the terminal node.
type chainNode struct {
	name string
	tool ToolFunc
	next string
}

// EvaluationChain is the fixed three-node pipeline
// compliance_node -> risk_node -> renewal_node. Each node invokes its tool
// with the document ID and appends the verbatim output as a named message.
type EvaluationChain struct {
	entry string
	nodes map[string]chainNode
}

// NewEvaluationChain builds the chain with the default capabilities.
func NewEvaluationChain() *EvaluationChain {
	c := &EvaluationChain{}
	c.entry = ComplianceNode
	c.nodes = map[string]chainNode{
		ComplianceNode: {name: ComplianceNode, tool: CheckCompliance, next: RiskNode},
		RiskNode:       {name: RiskNode, tool: CheckRisk, next: RenewalNode},
		RenewalNode:    {name: RenewalNode, tool: CheckRenewal, next: ""},
	}
	return c
}

// ReplaceTool swaps the capability behind one node, leaving the topology
// untouched. Unknown node names are ignored.
func (c *EvaluationChain) ReplaceTool(nodeName string, tool ToolFunc) {
	node, ok := c.nodes[nodeName]
	if !ok {
		log.Printf("ReplaceTool: unknown node %q", nodeName)
		return
	}
	node.tool = tool
	c.nodes[nodeName] = node
}

// Run walks the chain for one document and returns the full transcript,
// starting with the synthetic entry message. The chain has no branches and
// no cycles; every run visits each node exactly once, in order.
func (c *EvaluationChain) Run(docID uint) []AgentMessage {
	messages := []AgentMessage{
		{Name: "", Content: fmt.Sprintf("doc_id: %d", docID)},
	}

	for name := c.entry; name != ""; {
		node := c.nodes[name]
		output := node.tool(docID)
		messages = append(messages, AgentMessage{Name: node.name, Content: output})
		name = node.next
	}

	return messages
}

// DeriveVerdicts reduces a transcript to the three scalar outcomes:
// compliance is true when any message contains "is compliant", risk and
// renewal come from their nodes' messages with defaults when absent.
func DeriveVerdicts(messages []AgentMessage) (compliance bool, risk string, renewal string) {
	risk = DefaultRisk
	renewal = DefaultRenewal

	for _, msg := range messages {
		if strings.Contains(msg.Content, "is compliant") {
			compliance = true
		}
	}
	for _, msg := range messages {
		if msg.Name == RiskNode {
			risk = msg.Content
			break
		}
	}
	for _, msg := range messages {
		if msg.Name == RenewalNode {
			renewal = msg.Content
			break
		}
	}
	return compliance, risk, renewal
}
