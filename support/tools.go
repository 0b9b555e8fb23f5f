package support

import (
	"fmt"
	"strings"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/tool"
)

// Tool names exposed to the model.
const (
	GreetToolName          = "greet"
	RefundToolName         = "refund"
	RestartServiceToolName = "restart_service"
	ClassifyIssueToolName  = "classify_issue"
)

// Issue types accepted by ClassifyIssue.
const (
	IssueBilling   = "billing"
	IssueTechnical = "technical"
	IssueGeneral   = "general"
)

// Greet returns a personalized greeting. It is always authorized; message is
// accepted but unused.
func Greet(sc *core.SupportContext, _ string) Outcome {
	return Authorized(fmt.Sprintf("Hello %s! How can I assist you today?", sc.UserName))
}

// Refund initiates a simulated refund for premium users. The amount is
// embedded verbatim.
func Refund(sc *core.SupportContext, amount string) Outcome {
	if !sc.IsPremiumUser {
		return Denied("Refunds are only for premium users.")
	}
	return Authorized(fmt.Sprintf("💰 Refund of $%s initiated.", amount))
}

// RestartService restarts a simulated service when the issue was classified
// as exactly "technical".
func RestartService(sc *core.SupportContext, service string) Outcome {
	if sc.IssueType != IssueTechnical {
		return Denied("Restart tool only available for technical issues.")
	}
	return Authorized(fmt.Sprintf("🔧 Service '%s' restarted.", service))
}

// ClassifyIssue records the issue type on the SupportContext. Input is
// trimmed and lower-cased; unknown types leave the context untouched.
func ClassifyIssue(sc *core.SupportContext, issueType string) Outcome {
	normalized := strings.ToLower(strings.TrimSpace(issueType))
	switch normalized {
	case IssueBilling, IssueTechnical, IssueGeneral:
		sc.IssueType = normalized
		return Authorized(fmt.Sprintf("Issue classified as %s.", normalized))
	default:
		return Denied(fmt.Sprintf("Unknown issue type '%s'. Use billing, technical or general.", issueType))
	}
}

type greetArgs struct {
	Message string `json:"message,omitempty" description:"The user's greeting or message"`
}

type refundArgs struct {
	Amount string `json:"amount" description:"Amount to refund, as given by the user"`
}

type restartArgs struct {
	Service string `json:"service" description:"Name of the service to restart"`
}

type classifyArgs struct {
	IssueType string `json:"issue_type" description:"Category of the user's issue: billing, technical or general"`
}

// NewGreetTool exposes Greet to the model.
func NewGreetTool() tool.Tool {
	return tool.NewFunctionToolFromStruct(
		GreetToolName,
		"Greet the current user by name.",
		greetArgs{},
		stringArgTool("message", Greet),
	)
}

// NewRefundTool exposes Refund to the model.
func NewRefundTool() tool.Tool {
	return tool.NewFunctionToolFromStruct(
		RefundToolName,
		"Initiate a refund for the given amount. Only premium users are eligible.",
		refundArgs{},
		stringArgTool("amount", Refund),
	)
}

// NewRestartServiceTool exposes RestartService to the model.
func NewRestartServiceTool() tool.Tool {
	return tool.NewFunctionToolFromStruct(
		RestartServiceToolName,
		"Restart a named service. Only available once the issue is classified as technical.",
		restartArgs{},
		stringArgTool("service", RestartService),
	)
}

// NewClassifyIssueTool exposes ClassifyIssue to the model and records the
// resulting issue_type change on the response event.
func NewClassifyIssueTool() tool.Tool {
	return tool.NewFunctionToolFromStruct(
		ClassifyIssueToolName,
		"Classify the user's issue as billing, technical or general.",
		classifyArgs{},
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			raw, _ := args["issue_type"].(string)
			out := ClassifyIssue(tc.Support(), raw)
			if out.IsAuthorized() {
				tc.RecordStateChange("issue_type", tc.Support().IssueType)
			}
			return out, nil
		},
	)
}

// stringArgTool adapts a (context, string) support function into a tool body.
func stringArgTool(
	param string,
	fn func(*core.SupportContext, string) Outcome,
) func(*core.ToolContext, map[string]any) (any, error) {
	return func(tc *core.ToolContext, args map[string]any) (any, error) {
		arg, _ := args[param].(string)
		out := fn(tc.Support(), arg)
		tc.LogDebug("support.tool.outcome", "param", param, "status", string(out.Status))
		return out, nil
	}
}
