package dictionary

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
)

// ChunkInfo contains metadata about a chunk file
type ChunkInfo struct {
	ID        int
	Filename  string
	WordCount int
}

// WordRank is one entry of a chunk file. Rank 1 is the most frequent word.
type WordRank struct {
	Word string
	Rank uint16
}

// ListChunks scans dir for dict_NNNN.bin files, sorted by ID.
func ListChunks(dir string) ([]ChunkInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}

	var chunks []ChunkInfo
	for _, file := range files {
		basename := filepath.Base(file)
		idStr := strings.TrimSuffix(strings.TrimPrefix(basename, "dict_"), ".bin")
		chunkID, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		wordCount, err := chunkWordCount(file)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
			continue
		}
		chunks = append(chunks, ChunkInfo{ID: chunkID, Filename: file, WordCount: wordCount})
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ID < chunks[j].ID
	})
	return chunks, nil
}

// chunkWordCount reads the word count from a chunk file's header
func chunkWordCount(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return 0, err
	}
	return int(wordCount), nil
}

// rankToScore inverts a rank so that rank 1 scores highest (65535).
func rankToScore(rank uint16) int {
	return 65536 - int(rank)
}

// ReadChunk streams every entry of a chunk file into fn as (word, score).
func ReadChunk(filename string, fn func(word string, score int)) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to open chunk file %s: %w", filename, err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)

	var totalEntries int32
	if err := binary.Read(reader, binary.LittleEndian, &totalEntries); err != nil {
		return 0, fmt.Errorf("failed to read chunk header: %w", err)
	}

	count := 0
	for count < int(totalEntries) {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			if err == io.EOF {
				break
			}
			return count, fmt.Errorf("failed to read word length: %w", err)
		}

		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return count, fmt.Errorf("failed to read word: %w", err)
		}

		var rank uint16
		if err := binary.Read(reader, binary.LittleEndian, &rank); err != nil {
			return count, fmt.Errorf("failed to read rank: %w", err)
		}

		fn(string(wordBytes), rankToScore(rank))
		count++
	}
	return count, nil
}

// WriteChunk writes entries in the chunk format ReadChunk understands.
func WriteChunk(filename string, entries []WordRank) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create chunk file %s: %w", filename, err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if err := binary.Write(w, binary.LittleEndian, int32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if len(e.Word) > 0xFFFF {
			return fmt.Errorf("word too long for chunk format: %d bytes", len(e.Word))
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(len(e.Word))); err != nil {
			return err
		}
		if _, err := w.WriteString(e.Word); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, e.Rank); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ChunkName returns the file name for chunk id.
func ChunkName(id int) string {
	return fmt.Sprintf("dict_%04d.bin", id)
}
