package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewSessionIsEmpty(t *testing.T) {
	s := New()
	assert.NotEqual(t, uuid.Nil, s.ID)
	assert.Equal(t, StatusIdle, s.Status)
	assert.Empty(t, s.InputText)
	assert.Empty(t, s.HumanizedText)
	assert.Nil(t, s.FileName)
	assert.Nil(t, s.Error)
}

func TestFileReadTransitions(t *testing.T) {
	s := New()
	s.HumanizedText = "old result"
	msg := "previous"
	s.Error = &msg

	s.BeginFileRead("notes.txt")
	assert.Equal(t, StatusReadingFile, s.Status)
	assert.True(t, s.Busy())
	assert.Nil(t, s.Error)
	assert.Equal(t, "notes.txt", *s.FileName)
	assert.Empty(t, s.HumanizedText)

	s.FinishFileRead("loaded text")
	assert.Equal(t, StatusIdle, s.Status)
	assert.Equal(t, "loaded text", s.InputText)
	assert.Equal(t, "notes.txt", *s.FileName)

	s.BeginFileRead("bad.pdf")
	s.FailFileRead("Failed to parse PDF.")
	assert.Equal(t, StatusError, s.Status)
	assert.Nil(t, s.FileName)
	assert.Equal(t, "Failed to parse PDF.", *s.Error)
	assert.Equal(t, "loaded text", s.InputText, "failed read keeps previous text")
}

func TestProcessingTransitions(t *testing.T) {
	s := New()
	s.SetText("input")
	s.BeginProcessing()
	assert.True(t, s.Busy())

	s.Complete("output")
	assert.Equal(t, StatusCompleted, s.Status)
	assert.Equal(t, "output", s.HumanizedText)
	assert.False(t, s.Busy())

	s.BeginProcessing()
	s.Fail("boom")
	assert.Equal(t, StatusError, s.Status)
	assert.Equal(t, "boom", *s.Error)
	assert.Equal(t, "output", s.HumanizedText)
}

func TestRemoveFileKeepsText(t *testing.T) {
	s := New()
	s.BeginFileRead("a.txt")
	s.FinishFileRead("some text here")

	s.RemoveFile()
	assert.Nil(t, s.FileName)
	assert.Equal(t, "some text here", s.InputText)
}

func TestClearResetsAllFields(t *testing.T) {
	s := New()
	id := s.ID
	s.BeginFileRead("a.txt")
	s.FinishFileRead("some text here")
	s.BeginProcessing()
	s.Fail("nope")

	s.Clear()

	want := New()
	want.ID = id
	want.UpdatedAt = s.UpdatedAt
	assert.Equal(t, want, s)
}

func TestHasInput(t *testing.T) {
	s := New()
	assert.False(t, s.HasInput())
	s.SetText(" \n\t ")
	assert.False(t, s.HasInput())
	s.SetText(" x ")
	assert.True(t, s.HasInput())
}
