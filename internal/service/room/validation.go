package room

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func (p JoinRoomParams) validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.RoomId, validation.Required, validation.Length(1, 64)),
		validation.Field(&p.SessionId, validation.Required),
	)
}

func (p PlayParams) validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.RoomId, validation.Required),
		validation.Field(&p.SenderId, validation.Required),
	)
}

func (p PauseParams) validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.RoomId, validation.Required),
		validation.Field(&p.SenderId, validation.Required),
	)
}

func (p SeekParams) validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.RoomId, validation.Required),
		validation.Field(&p.SenderId, validation.Required),
		validation.Field(&p.CurrentTime, validation.Min(0.0)),
	)
}

func (p CheckSyncParams) validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.RoomId, validation.Required),
		validation.Field(&p.SenderId, validation.Required),
		validation.Field(&p.CurrentTime, validation.Min(0.0)),
	)
}

func (p ChangeMediaParams) validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.RoomId, validation.Required),
		validation.Field(&p.MediaURL, validation.Required),
	)
}
