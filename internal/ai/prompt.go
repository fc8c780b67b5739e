package ai

import (
	"fmt"
	"strings"
)

const systemInstruction = `You are the support assistant for ZetsuServ, a web hosting and services company.
Write a reply to the customer's support request.
TONE: professional, empathetic, concise.
Ground your answer in the provided knowledge base context when it is relevant.
If you cannot resolve the issue from the available information, acknowledge the request and explain that a support engineer will follow up.
Do not invent account details, prices or deadlines.`

const visionInstruction = `The customer attached a screenshot. Read the image and treat anything visible in it (error messages, dialogs, console output) as part of the problem description.`

// ImagePayload is a validated inline image ready for vision analysis.
type ImagePayload struct {
	MIMEType string
	Data     []byte
}

// Prompt is the composed model input: a fixed system instruction, a user
// turn, and an optional image.
type Prompt struct {
	System string
	User   string
	Image  *ImagePayload
}

// ComposeInput carries everything the composer needs for one ticket.
type ComposeInput struct {
	Message          string
	IssueType        string
	RequesterName    string
	KnowledgeContext string
	Image            *ImagePayload
}

// ComposePrompt builds the model prompt for a ticket. Image inclusion is
// opportunistic: a nil Image simply yields a text-only prompt. ComposePrompt
// never fails.
func ComposePrompt(in ComposeInput) Prompt {
	var user strings.Builder
	fmt.Fprintf(&user, "Customer: %s\n", strings.TrimSpace(in.RequesterName))
	fmt.Fprintf(&user, "Issue Type: %s\n", strings.TrimSpace(in.IssueType))
	fmt.Fprintf(&user, "Message: %q", strings.TrimSpace(in.Message))

	if ctx := strings.TrimSpace(in.KnowledgeContext); ctx != "" {
		fmt.Fprintf(&user, "\n\nKnowledge base:\n%s", ctx)
	}

	system := systemInstruction
	if in.Image != nil {
		system = system + "\n\n" + visionInstruction
	}

	return Prompt{
		System: system,
		User:   user.String(),
		Image:  in.Image,
	}
}
