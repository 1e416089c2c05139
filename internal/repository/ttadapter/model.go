package ttadapter

import (
	"fmt"
	"slices"
	"time"

	"github.com/Xausdorf/openpoll/internal/domain"
	"github.com/tarantool/go-tarantool/v2/datetime"
	"github.com/vmihailenco/msgpack/v5"
)

type PollModel struct {
	Team      string
	Channel   string
	TS        string
	Question  string
	Options   []domain.PollOption
	Anonymous bool
	Limited   bool
	Limit     int
	Hidden    bool
	Creator   string
	CreatedAt time.Time
}

// VoteModel - one vote table, options ordered by id.
type VoteModel struct {
	Team    string
	Channel string
	TS      string
	Votes   domain.VoteTable
}

type FlagModel struct {
	Team    string
	Channel string
	TS      string
	Name    string
	Value   bool
}

const (
	pollModelFields   = 11
	voteModelFields   = 4
	flagModelFields   = 5
	optionModelFields = 2
	voteEntryFields   = 2
)

func key(id domain.PollID) []interface{} {
	return []interface{}{id.Team, id.Channel, id.TS}
}

func NewPollModel(poll *domain.Poll) *PollModel {
	return &PollModel{
		Team:      poll.ID.Team,
		Channel:   poll.ID.Channel,
		TS:        poll.ID.TS,
		Question:  poll.Question,
		Options:   poll.Options,
		Anonymous: poll.Settings.Anonymous,
		Limited:   poll.Settings.Limited,
		Limit:     poll.Settings.Limit,
		Hidden:    poll.Settings.Hidden,
		Creator:   poll.Creator,
		CreatedAt: poll.CreatedAt,
	}
}

func (p *PollModel) ToPoll() *domain.Poll {
	return &domain.Poll{
		ID:       domain.PollID{Team: p.Team, Channel: p.Channel, TS: p.TS},
		Question: p.Question,
		Options:  p.Options,
		Settings: domain.Settings{
			Anonymous: p.Anonymous,
			Limited:   p.Limited,
			Limit:     p.Limit,
			Hidden:    p.Hidden,
		},
		Creator:   p.Creator,
		CreatedAt: p.CreatedAt,
	}
}

func encodeID(e *msgpack.Encoder, team, channel, ts string) error {
	if err := e.EncodeString(team); err != nil {
		return err
	}
	if err := e.EncodeString(channel); err != nil {
		return err
	}
	return e.EncodeString(ts)
}

func decodeID(d *msgpack.Decoder, team, channel, ts *string) error {
	var err error
	if *team, err = d.DecodeString(); err != nil {
		return err
	}
	if *channel, err = d.DecodeString(); err != nil {
		return err
	}
	*ts, err = d.DecodeString()
	return err
}

func decodeArrayLen(d *msgpack.Decoder, want int) error {
	l, err := d.DecodeArrayLen()
	if err != nil {
		return err
	}
	if l != want {
		return fmt.Errorf("array len doesn't match: %d", l)
	}
	return nil
}

func (p *PollModel) EncodeMsgpack(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(pollModelFields); err != nil {
		return err
	}
	if err := encodeID(e, p.Team, p.Channel, p.TS); err != nil {
		return err
	}
	if err := e.EncodeString(p.Question); err != nil {
		return err
	}
	if err := e.EncodeArrayLen(len(p.Options)); err != nil {
		return err
	}
	for _, option := range p.Options {
		if err := e.EncodeArrayLen(optionModelFields); err != nil {
			return err
		}
		if err := e.EncodeInt(int64(option.ID)); err != nil {
			return err
		}
		if err := e.EncodeString(option.Label); err != nil {
			return err
		}
	}
	if err := e.EncodeBool(p.Anonymous); err != nil {
		return err
	}
	if err := e.EncodeBool(p.Limited); err != nil {
		return err
	}
	if err := e.EncodeInt(int64(p.Limit)); err != nil {
		return err
	}
	if err := e.EncodeBool(p.Hidden); err != nil {
		return err
	}
	if err := e.EncodeString(p.Creator); err != nil {
		return err
	}
	createdAt, err := datetime.MakeDatetime(p.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("could not convert created_at: %w", err)
	}
	return e.Encode(&createdAt)
}

func (p *PollModel) DecodeMsgpack(d *msgpack.Decoder) error {
	var err error
	if err = decodeArrayLen(d, pollModelFields); err != nil {
		return err
	}
	if err = decodeID(d, &p.Team, &p.Channel, &p.TS); err != nil {
		return err
	}
	if p.Question, err = d.DecodeString(); err != nil {
		return err
	}
	var l int
	if l, err = d.DecodeArrayLen(); err != nil {
		return err
	}
	p.Options = make([]domain.PollOption, l)
	for i := range l {
		if err = decodeArrayLen(d, optionModelFields); err != nil {
			return err
		}
		if p.Options[i].ID, err = d.DecodeInt(); err != nil {
			return err
		}
		if p.Options[i].Label, err = d.DecodeString(); err != nil {
			return err
		}
	}
	if p.Anonymous, err = d.DecodeBool(); err != nil {
		return err
	}
	if p.Limited, err = d.DecodeBool(); err != nil {
		return err
	}
	if p.Limit, err = d.DecodeInt(); err != nil {
		return err
	}
	if p.Hidden, err = d.DecodeBool(); err != nil {
		return err
	}
	if p.Creator, err = d.DecodeString(); err != nil {
		return err
	}
	var createdAt datetime.Datetime
	if err = d.Decode(&createdAt); err != nil {
		return err
	}
	p.CreatedAt = createdAt.ToTime().UTC()
	return nil
}

func NewVoteModel(id domain.PollID, votes domain.VoteTable) *VoteModel {
	return &VoteModel{
		Team:    id.Team,
		Channel: id.Channel,
		TS:      id.TS,
		Votes:   votes,
	}
}

func (v *VoteModel) EncodeMsgpack(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(voteModelFields); err != nil {
		return err
	}
	if err := encodeID(e, v.Team, v.Channel, v.TS); err != nil {
		return err
	}

	ids := make([]int, 0, len(v.Votes))
	for id := range v.Votes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	if err := e.EncodeArrayLen(len(ids)); err != nil {
		return err
	}
	for _, id := range ids {
		if err := e.EncodeArrayLen(voteEntryFields); err != nil {
			return err
		}
		if err := e.EncodeInt(int64(id)); err != nil {
			return err
		}
		voters := v.Votes[id]
		if err := e.EncodeArrayLen(len(voters)); err != nil {
			return err
		}
		for _, voter := range voters {
			if err := e.EncodeString(voter); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *VoteModel) DecodeMsgpack(d *msgpack.Decoder) error {
	var err error
	if err = decodeArrayLen(d, voteModelFields); err != nil {
		return err
	}
	if err = decodeID(d, &v.Team, &v.Channel, &v.TS); err != nil {
		return err
	}
	var l int
	if l, err = d.DecodeArrayLen(); err != nil {
		return err
	}
	v.Votes = make(domain.VoteTable, l)
	for range l {
		if err = decodeArrayLen(d, voteEntryFields); err != nil {
			return err
		}
		var id, n int
		if id, err = d.DecodeInt(); err != nil {
			return err
		}
		if n, err = d.DecodeArrayLen(); err != nil {
			return err
		}
		voters := make([]string, n)
		for i := range n {
			if voters[i], err = d.DecodeString(); err != nil {
				return err
			}
		}
		v.Votes[id] = voters
	}
	return nil
}

func NewFlagModel(id domain.PollID, flag domain.Flag, value bool) *FlagModel {
	return &FlagModel{
		Team:    id.Team,
		Channel: id.Channel,
		TS:      id.TS,
		Name:    string(flag),
		Value:   value,
	}
}

func (f *FlagModel) EncodeMsgpack(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(flagModelFields); err != nil {
		return err
	}
	if err := encodeID(e, f.Team, f.Channel, f.TS); err != nil {
		return err
	}
	if err := e.EncodeString(f.Name); err != nil {
		return err
	}
	return e.EncodeBool(f.Value)
}

func (f *FlagModel) DecodeMsgpack(d *msgpack.Decoder) error {
	var err error
	if err = decodeArrayLen(d, flagModelFields); err != nil {
		return err
	}
	if err = decodeID(d, &f.Team, &f.Channel, &f.TS); err != nil {
		return err
	}
	if f.Name, err = d.DecodeString(); err != nil {
		return err
	}
	f.Value, err = d.DecodeBool()
	return err
}
