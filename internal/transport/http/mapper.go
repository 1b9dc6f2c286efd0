package http

import (
	"encoding/json"
	"time"

	"github.com/launchstack/chatroom-server/internal/core"
	"github.com/launchstack/chatroom-server/internal/proto"
)

// inboundToCommand translates a wire request into a hub command. Any malformed
// payload yields an error reply for the caller, never a fatal condition.
func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed payload"}
		}
		if join.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		return &core.Command{
			Kind: core.CommandJoinRoom,
			Room: join.Room,
		}, nil
	case proto.InboundTypeLeave:
		var leave proto.JoinData
		if err := json.Unmarshal(inbound.Data, &leave); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed payload"}
		}
		if leave.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		return &core.Command{
			Kind: core.CommandLeaveRoom,
			Room: leave.Room,
		}, nil
	case proto.InboundTypeMsg:
		var msg proto.MsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed payload"}
		}
		if msg.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		if msg.Text == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "text is required"}
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Room: msg.Room,
			Text: msg.Text,
		}, nil
	case proto.InboundTypeHistory:
		var hist proto.JoinData
		if err := json.Unmarshal(inbound.Data, &hist); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "malformed payload"}
		}
		if hist.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
		return &core.Command{
			Kind: core.CommandHistory,
			Room: hist.Room,
		}, nil
	default:
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "unknown message type"}
	}
}

func chatEventMessage(msg core.Message) proto.EventMessage {
	return proto.EventMessage{
		Kind:    proto.MessageKindChat,
		ID:      msg.ID,
		Room:    msg.Room,
		Sender:  msg.Sender,
		Content: msg.Text,
		TS:      msg.CreatedAt.Unix(),
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventChatMessage:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "message",
			Data:  chatEventMessage(event.Message),
		}
	case core.EventSystemNotice:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "message",
			Data: proto.EventMessage{
				Kind:    proto.MessageKindSystem,
				Room:    event.Room,
				Content: event.Content,
			},
		}
	case core.EventRoomJoined:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "room_joined",
			Data:  proto.EventRoomJoined{Room: event.Room},
		}
	case core.EventHistory:
		messages := make([]proto.EventMessage, 0, len(event.Messages))
		for _, msg := range event.Messages {
			messages = append(messages, chatEventMessage(msg))
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "history",
			Data: proto.EventHistory{
				Room:     event.Room,
				Messages: messages,
			},
		}
	case core.EventRoomCreated:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "room_created",
			Data: proto.EventRoomCreated{
				ID:        event.RoomInfo.ID,
				Name:      event.RoomInfo.Name,
				CreatedAt: event.RoomInfo.CreatedAt.Format(time.RFC3339),
			},
		}
	case core.EventRoomDeleted:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "room_deleted",
			Data:  proto.EventRoomDeleted{ID: event.Room},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
