// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

package session

// Wire frames of the streaming produce/consume transport. Payloads travel
// base64-encoded; the correlation id rides the "context" field.

type produceFrame struct {
	Payload    string            `json:"payload"`
	Properties map[string]string `json:"properties,omitempty"`
	Key        string            `json:"key,omitempty"`
	Context    string            `json:"context"`
}

type produceAckFrame struct {
	Result    string `json:"result"`
	MessageID string `json:"messageId"`
	ErrorMsg  string `json:"errorMsg"`
	Context   string `json:"context"`
}

const ackOK = "ok"

type consumeFrame struct {
	MessageID       string            `json:"messageId"`
	Payload         string            `json:"payload"`
	Properties      map[string]string `json:"properties"`
	PublishTime     string            `json:"publishTime"`
	Key             string            `json:"key"`
	RedeliveryCount int               `json:"redeliveryCount"`
}

type consumeAckFrame struct {
	MessageID string `json:"messageId"`
}
