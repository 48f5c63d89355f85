package game

import "slices"

func (r *Room) handleJoin(req roomJoinRequest) {
	err := r.admit(req.player.Name)
	if err != nil {
		r.logger.Debug().Err(err).Str("conn", req.player.Id).Msg("join refused")
		req.replyChan <- joinResult{err: err}
		return
	}

	player := req.player
	player.Score = 0
	player.IsHost = false
	player.HasGuessed = false
	r.players = append(r.players, &player)

	r.transport.JoinGroup(player.Id, r.id)
	players := r.snapshot()
	r.broadcast(MakePacketPlayerJoined(players))

	r.logger.Info().Str("conn", player.Id).Str("name", player.Name).Msg("player joined")
	req.replyChan <- joinResult{players: players}
}

func (r *Room) admit(name string) error {
	if r.phase != PHASE_WAITING {
		return ErrGameInProgress
	}
	if len(r.players) >= r.configs.MaxPlayers {
		return ErrRoomFull
	}
	for _, p := range r.players {
		if p.Name == name {
			return ErrNameTaken
		}
	}
	return nil
}

func (r *Room) handleLeave(connId string) {
	index := r.indexOf(connId)
	if index < 0 {
		return
	}
	wasDrawer := r.isDrawer(connId)
	leaving := r.players[index]

	r.players = slices.Delete(r.players, index, index+1)
	r.turnOrder = slices.DeleteFunc(r.turnOrder, func(id string) bool { return id == connId })
	r.transport.LeaveGroup(connId, r.id)

	r.logger.Info().Str("conn", connId).Str("name", leaving.Name).Msg("player left")

	if len(r.players) == 0 {
		r.destroy()
		return
	}

	if !slices.ContainsFunc(r.players, func(p *Player) bool { return p.IsHost }) {
		r.players[0].IsHost = true
	}

	r.broadcast(MakePacketPlayerLeft(r.snapshot()))

	if !r.phase.inGame() {
		return
	}

	if len(r.players) < 2 {
		r.backToWaiting()
		return
	}

	if wasDrawer && (r.phase == PHASE_PICKING || r.phase == PHASE_DRAWING) {
		// The successor slid into the vacated index; advanceTurn moves onto it.
		r.cancelTimer()
		r.drawerIndex = index - 1
		r.advanceTurn()
		return
	}

	if index < r.drawerIndex || (wasDrawer && r.phase == PHASE_ROUND_END) {
		r.drawerIndex--
	}

	if r.phase == PHASE_DRAWING && r.allGuessed() {
		r.endTurn()
	}
}

func (r *Room) destroy() {
	r.cancelTimer()
	if r.onEmpty != nil {
		r.onEmpty(r.id)
	}
	r.cancel()
}
