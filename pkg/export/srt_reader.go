package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseSRTTime 解析 HH:MM:SS,mmm 时间戳，同时接受 "." 作为毫秒分隔符
func ParseSRTTime(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	timeParts := strings.Split(value, ",")
	if len(timeParts) != 2 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(timeParts[0], ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(timeParts[1])
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond, nil
}

// ParseSRT 读取SRT内容，返回按文件顺序排列的字幕条目
func ParseSRT(r io.Reader) ([]models.SubtitleCue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	cues := make([]models.SubtitleCue, 0)
	var block []string
	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		cue, err := parseBlock(block)
		block = block[:0]
		if err != nil {
			return err
		}
		cues = append(cues, cue)
		return nil
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		block = append(block, line)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cues, nil
}

func parseBlock(lines []string) (models.SubtitleCue, error) {
	var cue models.SubtitleCue
	if len(lines) < 2 {
		return cue, fmt.Errorf("incomplete cue %q", strings.Join(lines, "\\n"))
	}
	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return cue, fmt.Errorf("invalid cue index %q", lines[0])
	}
	parts := strings.Split(lines[1], "-->")
	if len(parts) != 2 {
		return cue, fmt.Errorf("cue %d: invalid timing line %q", index, lines[1])
	}
	start, err := ParseSRTTime(parts[0])
	if err != nil {
		return cue, fmt.Errorf("cue %d: %w", index, err)
	}
	// 时间行末尾可能带有位置信息
	endFields := strings.Fields(parts[1])
	if len(endFields) == 0 {
		return cue, fmt.Errorf("cue %d: missing end timestamp", index)
	}
	end, err := ParseSRTTime(endFields[0])
	if err != nil {
		return cue, fmt.Errorf("cue %d: %w", index, err)
	}

	cue.Index = index
	cue.Start = start
	cue.End = end
	cue.Content = strings.Join(lines[2:], "\n")
	return cue, nil
}

// ReadSRTFile 读取并解析SRT文件
func ReadSRTFile(path string) ([]models.SubtitleCue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read srt: %w", err)
	}
	defer f.Close()
	return ParseSRT(f)
}
