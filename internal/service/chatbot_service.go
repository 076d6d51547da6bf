package service

import (
	"context"
	"strings"
	"time"

	"axonflow-be/internal/constant"
	"axonflow-be/internal/dto"
	"axonflow-be/internal/entity"
	"axonflow-be/internal/repository/specification"
	"axonflow-be/internal/repository/unitofwork"
	"axonflow-be/pkg/llm"
	"axonflow-be/pkg/rag"

	"github.com/google/uuid"
)

type IChatbotService interface {
	CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	RenameSession(ctx context.Context, userId, sessionId uuid.UUID, req *dto.RenameSessionRequest) (*dto.RenameSessionResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error
}

type chatbotService struct {
	uowFactory unitofwork.RepositoryFactory
	ragEngine  *rag.Engine
}

func NewChatbotService(uowFactory unitofwork.RepositoryFactory, ragEngine *rag.Engine) IChatbotService {
	return &chatbotService{
		uowFactory: uowFactory,
		ragEngine:  ragEngine,
	}
}

func (s *chatbotService) CreateSession(ctx context.Context, userId uuid.UUID) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     "New Chat",
		CreatedAt: time.Now(),
	}
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *chatbotService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.GetAllSessionsResponse, len(sessions))
	for i, session := range sessions {
		responses[i] = &dto.GetAllSessionsResponse{
			Id:        session.Id,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		}
	}
	return responses, nil
}

func (s *chatbotService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrNotFound
	}
	return session, nil
}

func (s *chatbotService) GetChatHistory(ctx context.Context, userId, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	messageIds := make([]uuid.UUID, len(messages))
	for i, m := range messages {
		messageIds[i] = m.Id
	}
	citations, err := uow.ChatMessageRepository().FindCitationsByMessageIds(ctx, messageIds)
	if err != nil {
		return nil, err
	}
	citationsByMessage := make(map[uuid.UUID][]dto.CitationDTO)
	for _, c := range citations {
		citationsByMessage[c.ChatMessageId] = append(citationsByMessage[c.ChatMessageId], dto.CitationDTO{
			DocumentTitle: c.DocumentTitle,
			ChunkIndex:    c.ChunkIndex,
			Score:         c.Score,
		})
	}

	responses := make([]*dto.GetChatHistoryResponse, len(messages))
	for i, m := range messages {
		responses[i] = &dto.GetChatHistoryResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
			Citations: citationsByMessage[m.Id],
		}
	}
	return responses, nil
}

// sessionTitleFromMessage derives a session title from the first user
// message: the first five words, with an ellipsis when truncated.
func sessionTitleFromMessage(content string) string {
	words := strings.Fields(content)
	if len(words) > 5 {
		words = words[:5]
	}
	title := strings.Join(words, " ")
	if len(words) == 5 {
		title += "..."
	}
	return title
}

func (s *chatbotService) SendChat(ctx context.Context, userId uuid.UUID, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwnedSession(ctx, uow, userId, req.ChatSessionId)
	if err != nil {
		return nil, err
	}

	// History before the current message, most recent turns only,
	// returned to chronological order for the model.
	prior, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{Count: rag.DefaultHistoryTurns},
	)
	if err != nil {
		return nil, err
	}
	history := make([]llm.Message, len(prior))
	for i, m := range prior {
		history[len(prior)-1-i] = llm.Message{Role: m.Role, Content: m.Content}
	}

	userMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		Content:       req.Content,
		Role:          constant.ChatMessageRoleUser,
		ChatSessionId: session.Id,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMessage); err != nil {
		return nil, err
	}

	if len(prior) == 0 {
		session.Title = sessionTitleFromMessage(req.Content)
		if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
			return nil, err
		}
	}

	result, err := s.ragEngine.Query(ctx, userId, req.Content, history)
	if err != nil {
		return nil, err
	}

	assistantMessage := &entity.ChatMessage{
		Id:            uuid.New(),
		Content:       result.Answer,
		Role:          constant.ChatMessageRoleAssistant,
		ChatSessionId: session.Id,
		CreatedAt:     time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, assistantMessage); err != nil {
		return nil, err
	}

	replyCitations := make([]dto.CitationDTO, len(result.Citations))
	if len(result.Citations) > 0 {
		records := make([]*entity.ChatCitation, len(result.Citations))
		for i, c := range result.Citations {
			records[i] = &entity.ChatCitation{
				Id:            uuid.New(),
				ChatMessageId: assistantMessage.Id,
				DocumentTitle: c.DocumentTitle,
				ChunkIndex:    c.ChunkIndex,
				Score:         c.Score,
				Position:      i,
				CreatedAt:     time.Now(),
			}
			replyCitations[i] = dto.CitationDTO{
				DocumentTitle: c.DocumentTitle,
				ChunkIndex:    c.ChunkIndex,
				Score:         c.Score,
			}
		}
		if err := uow.ChatMessageRepository().CreateCitations(ctx, records); err != nil {
			return nil, err
		}
	}

	return &dto.SendChatResponse{
		ChatSessionId:    session.Id,
		ChatSessionTitle: session.Title,
		Sent: &dto.SendChatResponseMessage{
			Id:        userMessage.Id,
			Content:   userMessage.Content,
			Role:      userMessage.Role,
			CreatedAt: userMessage.CreatedAt,
		},
		Reply: &dto.SendChatResponseMessage{
			Id:        assistantMessage.Id,
			Content:   assistantMessage.Content,
			Role:      assistantMessage.Role,
			CreatedAt: assistantMessage.CreatedAt,
			Citations: replyCitations,
		},
	}, nil
}

func (s *chatbotService) RenameSession(ctx context.Context, userId, sessionId uuid.UUID, req *dto.RenameSessionRequest) (*dto.RenameSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	session.Title = req.Title
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	return &dto.RenameSessionResponse{
		Id:    session.Id,
		Title: session.Title,
	}, nil
}

func (s *chatbotService) DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteByChatSessionId(ctx, session.Id); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, session.Id); err != nil {
		return err
	}

	return uow.Commit()
}
