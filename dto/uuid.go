package dto

import "github.com/google/uuid"

// UnmarshallingUuid binds an optional uuid query parameter. The zero value means absent.
type UnmarshallingUuid struct {
	_uuid uuid.UUID
}

func (u *UnmarshallingUuid) Uuid() uuid.UUID {
	return u._uuid
}

func (u *UnmarshallingUuid) Ptr() *uuid.UUID {
	if u._uuid == uuid.Nil {
		return nil
	}
	id := u._uuid
	return &id
}

func (u *UnmarshallingUuid) UnmarshalParam(param string) error {
	parsed, err := uuid.Parse(param)
	if err != nil {
		return err
	}
	u._uuid = parsed
	return nil
}
