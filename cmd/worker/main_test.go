package main

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/gin-gonic/gin"

	"resume-vault/internal/bootstrap"
	"resume-vault/internal/queue"
	"resume-vault/internal/shared/config"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	_ = ctx
	_ = params
	_ = optFns
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	_ = ctx
	_ = optFns
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func newWorkerApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app, err := bootstrap.Build(config.Config{LocalStoreDir: t.TempDir()})
	if err != nil {
		t.Fatalf("bootstrap.Build: %v", err)
	}
	return app
}

func queuedJob(t *testing.T, app *bootstrap.App) string {
	t.Helper()
	created, err := app.ResumesService.Ingest(context.Background(), "SWE", map[string]any{
		"skills": []any{"go"},
	}, nil)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	job, err := app.GenerationService.CreateJob(context.Background(), created.ResumeID, 1, "req-1")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	return job.ID
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	app := newWorkerApp(t)
	jobID := queuedJob(t, app)
	client := &fakeSQS{}

	body, err := queue.EncodeMessage(queue.Message{JobID: jobID, ResumeID: "ignored", VersionNumber: 1, RequestID: "req-1"})
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	msg := sqstypes.Message{
		MessageId:     aws.String("m1"),
		ReceiptHandle: aws.String("r1"),
		Body:          aws.String(string(body)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}

func TestWorkerDoesNotDeleteOnFailure(t *testing.T) {
	app := newWorkerApp(t)
	client := &fakeSQS{}

	// The job id is unknown, so processing fails and the message stays
	// visible for redelivery.
	body, err := queue.EncodeMessage(queue.Message{JobID: "missing-job", RequestID: "req-2"})
	if err != nil {
		t.Fatalf("EncodeMessage: %v", err)
	}
	msg := sqstypes.Message{
		MessageId:     aws.String("m2"),
		ReceiptHandle: aws.String("r2"),
		Body:          aws.String(string(body)),
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnInvalidJSON(t *testing.T) {
	app := newWorkerApp(t)
	client := &fakeSQS{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m3"),
		ReceiptHandle: aws.String("r3"),
		Body:          aws.String("{bad-json"),
	}

	handleMessage(context.Background(), app, client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}
